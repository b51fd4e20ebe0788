package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"countdown/internal/metrics"
	"countdown/internal/notify"
	"countdown/internal/reminders"
	"countdown/internal/store"
	"countdown/internal/widget"
	"countdown/pkg/models"
)

var now = time.Date(2026, 10, 1, 7, 59, 0, 0, time.UTC)

func setup(t *testing.T) (*Watcher, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	st := store.NewJSONStore(dir)
	e := models.Event{
		ID:           "EV-1",
		Title:        "Exam",
		TargetDate:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		IsAllDay:     true,
		NotifyPolicy: models.NotificationPolicy{MorningOfDay: true},
	}
	if err := st.SaveEvents(ctx, []models.Event{e}); err != nil {
		t.Fatal(err)
	}
	spool := notify.NewSpool(dir)
	req := reminders.NewRequest(e, reminders.Window{Kind: reminders.KindMorningOf, FireAt: now.Add(time.Minute)})
	if err := spool.Schedule(ctx, []reminders.Request{req}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	w := &Watcher{
		Store:    st,
		Spool:    spool,
		Sink:     notify.WriterSink{W: &out},
		Metrics:  metrics.New(),
		Renderer: widget.Renderer{},
		DataDir:  dir,
	}
	return w, &out
}

func TestTickDeliversWhenDue(t *testing.T) {
	ctx := context.Background()
	w, out := setup(t)

	res, err := w.Tick(ctx, now)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if res.Delivered != 0 || res.Pending != 1 || out.Len() != 0 {
		t.Fatalf("early tick=%+v out=%q", res, out.String())
	}

	res, err = w.Tick(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if res.Delivered != 1 || res.Pending != 0 {
		t.Fatalf("due tick=%+v", res)
	}
	if !strings.Contains(out.String(), "Exam is today") {
		t.Fatalf("output=%q", out.String())
	}

	expected := `
# HELP countdown_reminders_delivered_total Reminders delivered by kind
# TYPE countdown_reminders_delivered_total counter
countdown_reminders_delivered_total{kind="1day"} 0
countdown_reminders_delivered_total{kind="1hour"} 0
countdown_reminders_delivered_total{kind="morning"} 1
# HELP countdown_reminders_pending Reminders waiting in the spool
# TYPE countdown_reminders_pending gauge
countdown_reminders_pending 0
`
	if err := testutil.GatherAndCompare(w.Metrics.Registry, strings.NewReader(expected),
		"countdown_reminders_delivered_total", "countdown_reminders_pending"); err != nil {
		t.Fatalf("metrics: %v", err)
	}
}

func TestTickWritesSnapshot(t *testing.T) {
	w, _ := setup(t)
	if _, err := w.Tick(context.Background(), now); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(w.DataDir, SnapshotFile))
	if err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	var snap widget.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Entries) != 25 || snap.Entries[0].EventID != "EV-1" {
		t.Fatalf("snapshot entries=%d first=%+v", len(snap.Entries), snap.Entries[0])
	}
	// The exam started at midnight, so the default policy shows "completed".
	if snap.Entries[0].Countdown != "completed" {
		t.Fatalf("countdown=%q", snap.Entries[0].Countdown)
	}
}

func TestParserAcceptsCommonSpecs(t *testing.T) {
	p := NewParser()
	for _, spec := range []string{"* * * * *", "*/30 * * * * *", "@every 1m", "0 8 * * *"} {
		if _, err := p.Parse(spec); err != nil {
			t.Fatalf("Parse(%q): %v", spec, err)
		}
	}
	if _, err := p.Parse("not a spec"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	w, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, "@every 1h", func() time.Time { return now }) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop")
	}
	if err := w.Run(context.Background(), "bogus", nil); err == nil {
		t.Fatalf("expected schedule error")
	}
}
