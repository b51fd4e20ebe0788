package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"countdown/internal/reminders"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func req(id string, at time.Time) reminders.Request {
	return reminders.Request{Identifier: id, EventID: strings.Split(id, "_")[0], FireAt: at, Title: "T " + id, Body: "B " + id}
}

func ids(rs []reminders.Request) string {
	var out []string
	for _, r := range rs {
		out = append(out, r.Identifier)
	}
	return strings.Join(out, ",")
}

func TestApplyCancelsThenSchedules(t *testing.T) {
	ctx := context.Background()
	s := NewSpool(t.TempDir())

	if err := s.Schedule(ctx, []reminders.Request{req("E_1day", t0), req("E_1hour", t0.Add(time.Hour)), req("F_1day", t0)}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	in := reminders.Intent{
		Cancel:   reminders.AllIdentifiers("E"),
		Schedule: []reminders.Request{req("E_1day", t0.Add(2*time.Hour))},
	}
	if err := s.Apply(ctx, in, true); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	pending, err := s.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if got := ids(pending); got != "F_1day,E_1day" {
		t.Fatalf("pending=%s", got)
	}
	if !pending[1].FireAt.Equal(t0.Add(2 * time.Hour)) {
		t.Fatalf("E_1day not replaced: %v", pending[1].FireAt)
	}
}

func TestApplyUnauthorizedOnlyCancels(t *testing.T) {
	ctx := context.Background()
	s := NewSpool(t.TempDir())
	_ = s.Schedule(ctx, []reminders.Request{req("E_1day", t0)})

	in := reminders.Intent{Cancel: reminders.AllIdentifiers("E"), Schedule: []reminders.Request{req("E_morning", t0)}}
	if err := s.Apply(ctx, in, false); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	pending, _ := s.Pending(ctx)
	if len(pending) != 0 {
		t.Fatalf("pending=%s, want empty", ids(pending))
	}
}

func TestDeliverPopsDueRequests(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewSpool(dir)
	_ = s.Schedule(ctx, []reminders.Request{
		req("A_1day", t0.Add(-time.Minute)),
		req("B_1hour", t0),
		req("C_morning", t0.Add(time.Minute)),
	})

	var buf bytes.Buffer
	got, err := s.Deliver(ctx, t0, WriterSink{W: &buf})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if ids(got) != "A_1day,B_1hour" {
		t.Fatalf("delivered=%s", ids(got))
	}
	if !strings.Contains(buf.String(), "🔔 T A_1day: B A_1day") {
		t.Fatalf("output=%q", buf.String())
	}

	// A fresh spool on the same file sees only the remaining request.
	pending, _ := NewSpool(dir).Pending(ctx)
	if ids(pending) != "C_morning" {
		t.Fatalf("pending=%s", ids(pending))
	}
}

type failingSink struct{ fail string }

func (f failingSink) Deliver(ctx context.Context, r reminders.Request) error {
	if r.Identifier == f.fail {
		return errors.New("boom")
	}
	return nil
}

func TestDeliverKeepsFailedRequests(t *testing.T) {
	ctx := context.Background()
	s := NewSpool(t.TempDir())
	_ = s.Schedule(ctx, []reminders.Request{req("A_1day", t0), req("B_1day", t0)})

	got, err := s.Deliver(ctx, t0, failingSink{fail: "A_1day"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if ids(got) != "B_1day" {
		t.Fatalf("delivered=%s", ids(got))
	}
	pending, _ := s.Pending(ctx)
	if ids(pending) != "A_1day" {
		t.Fatalf("pending=%s", ids(pending))
	}
}

func TestCancelAll(t *testing.T) {
	ctx := context.Background()
	s := NewSpool(t.TempDir())
	_ = s.Schedule(ctx, []reminders.Request{req("A_1day", t0), req("B_1day", t0)})
	if err := s.CancelAll(ctx); err != nil {
		t.Fatalf("CancelAll: %v", err)
	}
	pending, _ := s.Pending(ctx)
	if len(pending) != 0 {
		t.Fatalf("pending=%s", ids(pending))
	}
}

func TestMultiSinkStopsAtFirstError(t *testing.T) {
	var buf bytes.Buffer
	m := MultiSink{failingSink{fail: "X_1day"}, WriterSink{W: &buf}}
	if err := m.Deliver(context.Background(), req("X_1day", t0)); err == nil {
		t.Fatalf("expected error")
	}
	if buf.Len() != 0 {
		t.Fatalf("second sink should not run")
	}
	if err := (LogSink{}).Deliver(context.Background(), req("Y_1day", t0)); err != nil {
		t.Fatalf("LogSink: %v", err)
	}
}

// Two spools on one directory stand in for the CLI and the watch daemon.
func TestSeparateSpoolsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	spools := []*Spool{NewSpool(dir), NewSpool(dir)}

	var wg sync.WaitGroup
	for i, s := range spools {
		for j := 0; j < 10; j++ {
			wg.Add(1)
			go func(s *Spool, id string) {
				defer wg.Done()
				if err := s.Schedule(ctx, []reminders.Request{req(id+"_1day", t0)}); err != nil {
					t.Errorf("Schedule %s: %v", id, err)
				}
			}(s, fmt.Sprintf("E%d-%d", i, j))
		}
	}
	wg.Wait()

	pending, err := spools[0].Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 20 {
		t.Fatalf("pending=%d want 20: %s", len(pending), ids(pending))
	}
	if _, err := os.Stat(spools[0].Path + lockSuffix); err != nil {
		t.Fatalf("lock file: %v", err)
	}
}
