package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"countdown/internal/config"
	"countdown/internal/events"
	"countdown/internal/notify"
	"countdown/internal/store"
	"countdown/internal/ui"
	"countdown/pkg/models"
)

func TestParseWhen(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata: %v", err)
	}
	tests := []struct {
		date, clock string
		want        time.Time
		allDay      bool
		wantErr     bool
	}{
		{"2026-12-01", "", time.Date(2026, 12, 1, 0, 0, 0, 0, tokyo), true, false},
		{"2026-12-01", "09:30", time.Date(2026, 12, 1, 9, 30, 0, 0, tokyo), false, false},
		{" 2026-12-01 ", " ", time.Date(2026, 12, 1, 0, 0, 0, 0, tokyo), true, false},
		{"12/01/2026", "", time.Time{}, false, true},
		{"2026-12-01", "9pm", time.Time{}, false, true},
	}
	for _, tt := range tests {
		got, allDay, err := parseWhen(tt.date, tt.clock, tokyo)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseWhen(%q,%q): expected error", tt.date, tt.clock)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseWhen(%q,%q): %v", tt.date, tt.clock, err)
		}
		if !got.Equal(tt.want) || allDay != tt.allDay {
			t.Fatalf("parseWhen(%q,%q)=%v,%v want %v,%v", tt.date, tt.clock, got, allDay, tt.want, tt.allDay)
		}
	}
}

func TestParseNotify(t *testing.T) {
	tests := []struct {
		in   string
		want models.NotificationPolicy
		back string
	}{
		{"", models.NotificationPolicy{}, "none"},
		{"none", models.NotificationPolicy{}, "none"},
		{"1day, Morning", models.NotificationPolicy{OneDayBefore: true, MorningOfDay: true}, "1day,morning"},
		{"hour", models.NotificationPolicy{OneHourBefore: true}, "1hour"},
		{"all", models.NotificationPolicy{OneDayBefore: true, OneHourBefore: true, MorningOfDay: true}, "1day,1hour,morning"},
	}
	for _, tt := range tests {
		got, err := parseNotify(tt.in)
		if err != nil {
			t.Fatalf("parseNotify(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseNotify(%q)=%+v", tt.in, got)
		}
		if s := formatNotify(got); s != tt.back {
			t.Fatalf("formatNotify=%q, want %q", s, tt.back)
		}
	}
	if _, err := parseNotify("weekly"); err == nil {
		t.Fatalf("expected error for unknown window")
	}
}

func TestDescribe(t *testing.T) {
	ui.SetStyled(false)
	if describe(nil) != nil {
		t.Fatalf("describe(nil) should be nil")
	}
	err := describe(events.CapacityError{Limit: events.FreeTierCap})
	if err == nil || !strings.Contains(err.Error(), "pro verify") {
		t.Fatalf("capacity=%v", err)
	}
	err = describe(events.NotFoundError{ID: "ABC"})
	if err == nil || !strings.Contains(err.Error(), `"ABC" not found`) {
		t.Fatalf("not found=%v", err)
	}
	plain := errors.New("disk full")
	if describe(plain) != plain {
		t.Fatalf("other errors should pass through")
	}
}

func TestVersionCommand(t *testing.T) {
	defer SetVersion("dev")
	SetVersion("v1.2.3")
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	defer RootCmd.SetOut(nil)
	if err := run(t, "version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := buf.String(); got != "countdown v1.2.3\n" {
		t.Fatalf("version output %q", got)
	}
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	RootCmd.SetArgs(args)
	return RootCmd.ExecuteContext(context.Background())
}

func TestCommandsEndToEnd(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)
	t.Setenv(config.EnvStorage, "json")
	t.Setenv(config.EnvTimezone, "UTC")
	ui.SetStyled(false)
	nowFunc = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	ctx := context.Background()
	js := store.NewJSONStore(home)

	err := run(t, "add", "   ", "-d", "2026-12-01")
	if err == nil || !strings.Contains(err.Error(), "title must not be empty") {
		t.Fatalf("blank title accepted: %v", err)
	}
	if evs, _ := js.LoadEvents(ctx); len(evs) != 0 {
		t.Fatalf("blank title stored: %+v", evs)
	}

	if err := run(t, "add", "Exam", "-d", "2026-12-01", "-t", "09:00", "-n", "1day,1hour"); err != nil {
		t.Fatalf("add: %v", err)
	}
	evs, err := js.LoadEvents(ctx)
	if err != nil || len(evs) != 1 {
		t.Fatalf("events=%v err=%v", evs, err)
	}
	if evs[0].Title != "Exam" || evs[0].IsAllDay || !evs[0].NotifyPolicy.OneHourBefore {
		t.Fatalf("stored=%+v", evs[0])
	}
	pending, err := notify.NewSpool(home).Pending(ctx)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending=%v err=%v", pending, err)
	}

	if err := run(t, "edit", evs[0].ShortID(), "--title", " "); err == nil {
		t.Fatalf("edit accepted a blank title")
	}
	if evs, _ = js.LoadEvents(ctx); evs[0].Title != "Exam" {
		t.Fatalf("title=%q after rejected edit", evs[0].Title)
	}

	// Free tier allows one active event.
	err = run(t, "duplicate", evs[0].ShortID())
	if err == nil || !strings.Contains(err.Error(), "pro verify") {
		t.Fatalf("duplicate over cap: %v", err)
	}

	if err := run(t, "complete", strings.ToLower(evs[0].ShortID())); err != nil {
		t.Fatalf("complete: %v", err)
	}
	evs, _ = js.LoadEvents(ctx)
	if evs[0].CompletedAt == nil {
		t.Fatalf("event not completed: %+v", evs[0])
	}
	if pending, _ = notify.NewSpool(home).Pending(ctx); len(pending) != 0 {
		t.Fatalf("reminders not cancelled: %v", pending)
	}

	if err := run(t, "settings", "--post-due", "elapsed"); err != nil {
		t.Fatalf("settings: %v", err)
	}
	s, _ := js.LoadSettings(ctx)
	if s.PostDueDisplay != models.PostDueElapsed {
		t.Fatalf("settings=%+v", s)
	}

	// The completed exam frees the only free slot.
	if err := run(t, "add", "Trip", "-d", "2026-12-24", "-t", "", "-n", "none"); err != nil {
		t.Fatalf("add trip: %v", err)
	}
	if evs, _ = js.LoadEvents(ctx); len(evs) != 2 {
		t.Fatalf("events=%+v", evs)
	}
	trip := evs[1]
	if trip.Title != "Trip" || !trip.IsAllDay {
		t.Fatalf("trip=%+v", trip)
	}

	out := filepath.Join(home, "out.ics")
	if err := run(t, "export", "--all", "-o", out); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := run(t, "delete", trip.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := run(t, "import", out); err != nil {
		t.Fatalf("import: %v", err)
	}
	evs, _ = js.LoadEvents(ctx)
	if len(evs) != 2 {
		t.Fatalf("after import=%+v, want completed exam kept and trip restored", evs)
	}
	restored := evs[1]
	if restored.Title != "Trip" || !restored.IsAllDay || restored.CompletedAt != nil {
		t.Fatalf("restored=%+v", restored)
	}
	if !restored.TargetDate.Equal(trip.TargetDate) {
		t.Fatalf("restored target=%v, want %v", restored.TargetDate, trip.TargetDate)
	}

	if err := run(t, "delete", "nope"); err == nil {
		t.Fatalf("expected not-found error")
	}
}
