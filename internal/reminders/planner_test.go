package reminders

import (
	"strings"
	"testing"
	"time"

	"countdown/pkg/models"
)

var (
	now       = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	allPolicy = models.NotificationPolicy{OneDayBefore: true, OneHourBefore: true, MorningOfDay: true}
)

func kinds(t *testing.T, ws []Window) map[Kind]time.Time {
	t.Helper()
	out := map[Kind]time.Time{}
	for _, w := range ws {
		if _, dup := out[w.Kind]; dup {
			t.Fatalf("duplicate window kind %s", w.Kind)
		}
		out[w.Kind] = w.FireAt
	}
	return out
}

func TestPlanAllDayTwoDaysOut(t *testing.T) {
	p := NewPlanner(time.UTC)
	target := time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)

	got := kinds(t, p.Plan(now, target, true, allPolicy))
	if len(got) != 2 {
		t.Fatalf("windows=%v, want day-before and morning-of", got)
	}
	if at, ok := got[KindDayBefore]; !ok || !at.Equal(target.Add(-24*time.Hour)) {
		t.Fatalf("day-before=%v ok=%v", at, ok)
	}
	wantMorning := time.Date(2026, 7, 3, 8, 0, 0, 0, time.UTC)
	if at, ok := got[KindMorningOf]; !ok || !at.Equal(wantMorning) {
		t.Fatalf("morning-of=%v, want %v", at, wantMorning)
	}
	if _, ok := got[KindHourBefore]; ok {
		t.Fatalf("all-day events never get an hour-before window")
	}
}

func TestPlanTimedEvent(t *testing.T) {
	p := NewPlanner(time.UTC)
	target := now.Add(3 * 24 * time.Hour)

	got := kinds(t, p.Plan(now, target, false, allPolicy))
	if len(got) != 2 {
		t.Fatalf("windows=%v", got)
	}
	if at := got[KindHourBefore]; !at.Equal(target.Add(-time.Hour)) {
		t.Fatalf("hour-before=%v", at)
	}
	if _, ok := got[KindMorningOf]; ok {
		t.Fatalf("timed events never get a morning-of window")
	}
}

func TestPlanDropsPastWindows(t *testing.T) {
	p := NewPlanner(time.UTC)

	soon := now.Add(30 * time.Minute)
	if got := p.Plan(now, soon, false, models.NotificationPolicy{OneHourBefore: true}); len(got) != 0 {
		t.Fatalf("windows=%v, want none (hour-before already passed)", got)
	}

	// Exactly one hour out: the window fires at now, which is not after now.
	if got := p.Plan(now, now.Add(time.Hour), false, models.NotificationPolicy{OneHourBefore: true}); len(got) != 0 {
		t.Fatalf("windows=%v, want none at the boundary", got)
	}

	past := now.Add(-time.Hour)
	if got := p.Plan(now, past, true, allPolicy); len(got) != 0 {
		t.Fatalf("windows=%v, want none for a past event", got)
	}

	// Same-day all-day event after 08:00: morning already gone.
	today := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if got := p.Plan(now, today, true, allPolicy); len(got) != 0 {
		t.Fatalf("windows=%v, want none", got)
	}
}

func TestPlanRespectsPolicyFlags(t *testing.T) {
	p := NewPlanner(time.UTC)
	target := now.Add(5 * 24 * time.Hour)

	if got := p.Plan(now, target, false, models.NotificationPolicy{}); len(got) != 0 {
		t.Fatalf("windows=%v, want none with every flag off", got)
	}
	got := kinds(t, p.Plan(now, target, false, models.NotificationPolicy{OneDayBefore: true}))
	if len(got) != 1 {
		t.Fatalf("windows=%v, want day-before only", got)
	}
	if _, ok := got[KindDayBefore]; !ok {
		t.Fatalf("windows=%v, want day-before only", got)
	}
}

func TestMorningOfUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	p := &Planner{Location: tokyo, MorningHour: 7}
	// 2026-07-04 20:00 UTC is 2026-07-05 05:00 in Tokyo.
	target := time.Date(2026, 7, 4, 20, 0, 0, 0, time.UTC)
	got := p.MorningOf(target)
	want := time.Date(2026, 7, 5, 7, 0, 0, 0, tokyo)
	if !got.Equal(want) {
		t.Fatalf("MorningOf=%v, want %v", got, want)
	}

	if h := NewPlanner(tokyo).MorningOf(target).Hour(); h != DefaultMorningHour {
		t.Fatalf("NewPlanner hour=%d, want %d", h, DefaultMorningHour)
	}
}

func TestMorningHourBounds(t *testing.T) {
	target := time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		hour, want int
	}{
		{0, 0},
		{23, 23},
		{-1, DefaultMorningHour},
		{24, DefaultMorningHour},
	}
	for _, tt := range tests {
		p := &Planner{Location: time.UTC, MorningHour: tt.hour}
		if h := p.MorningOf(target).Hour(); h != tt.want {
			t.Fatalf("MorningHour=%d fires at %d, want %d", tt.hour, h, tt.want)
		}
	}

	// A midnight morning-of window on an all-day event coincides with the target.
	p := &Planner{Location: time.UTC, MorningHour: 0}
	got := p.Plan(target.Add(-time.Hour), target, true, models.NotificationPolicy{MorningOfDay: true})
	if len(got) != 1 || !got[0].FireAt.Equal(target) {
		t.Fatalf("windows=%v, want one at %v", got, target)
	}
}

func TestIdentifiers(t *testing.T) {
	if got := Identifier("ABC", KindHourBefore); got != "ABC_1hour" {
		t.Fatalf("Identifier=%q", got)
	}
	ids := AllIdentifiers("ABC")
	want := []string{"ABC_1day", "ABC_1hour", "ABC_morning"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("AllIdentifiers=%v, want %v", ids, want)
	}
}

func TestRescheduleAlwaysCancelsFirst(t *testing.T) {
	p := NewPlanner(time.UTC)
	party := "🎂"
	e := models.Event{
		ID:           "EV1",
		Title:        "Birthday",
		TargetDate:   time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		IsAllDay:     true,
		Emoji:        &party,
		NotifyPolicy: models.NotificationPolicy{MorningOfDay: true},
	}

	in := p.Reschedule(e, now)
	if len(in.Cancel) != 3 {
		t.Fatalf("cancel=%v, want all three identifiers", in.Cancel)
	}
	if len(in.Schedule) != 1 {
		t.Fatalf("schedule=%v, want morning-of only", in.Schedule)
	}
	req := in.Schedule[0]
	if req.Identifier != "EV1_morning" || req.EventID != "EV1" || req.Kind != KindMorningOf {
		t.Fatalf("request=%+v", req)
	}
	if !strings.Contains(req.Body, "🎂") || !strings.Contains(req.Body, "Birthday") {
		t.Fatalf("body=%q", req.Body)
	}

	done := now
	e.CompletedAt = &done
	in = p.Reschedule(e, now)
	if len(in.Schedule) != 0 || len(in.Cancel) != 3 {
		t.Fatalf("completed intent=%+v, want cancel only", in)
	}
	if Cancellation("X").Empty() {
		t.Fatalf("cancellation intent should not be empty")
	}
}

func TestRequestContentDefaultsEmoji(t *testing.T) {
	e := models.Event{ID: "E", Title: "Important Meeting"}
	req := NewRequest(e, Window{Kind: KindDayBefore, FireAt: now})
	if !strings.Contains(req.Title, "Tomorrow") {
		t.Fatalf("title=%q", req.Title)
	}
	if !strings.HasPrefix(req.Body, "📅 Important Meeting") {
		t.Fatalf("body=%q", req.Body)
	}
}
