package widget

import (
	"strings"
	"testing"
	"time"

	"countdown/internal/countdown"
	"countdown/pkg/models"
)

var now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func ev(id string, in time.Duration) models.Event {
	return models.Event{ID: id, Title: "Event " + id, TargetDate: now.Add(in), ColorID: 2}
}

func titles(evs []models.Event) string {
	var out []string
	for _, e := range evs {
		out = append(out, e.ID)
	}
	return strings.Join(out, ",")
}

func TestSelectNearestUpcomingFirst(t *testing.T) {
	evs := []models.Event{
		ev("far", 10*24*time.Hour),
		ev("past", -2*time.Hour),
		ev("near", 3*time.Hour),
	}
	free := models.DefaultSettings()
	sel := Select(evs, free, "", now)
	if sel.Primary == nil || sel.Primary.ID != "near" || titles(sel.Events) != "near" {
		t.Fatalf("free selection=%s", titles(sel.Events))
	}

	pro := free
	pro.IsPro = true
	sel = Select(evs, pro, "", now)
	if titles(sel.Events) != "near,far" {
		t.Fatalf("pro selection=%s", titles(sel.Events))
	}
}

func TestSelectFallsBackToPastDue(t *testing.T) {
	done := now
	completed := ev("done", time.Hour)
	completed.CompletedAt = &done
	evs := []models.Event{
		ev("old", -48*time.Hour),
		ev("recent", -time.Hour),
		completed,
	}
	st := models.DefaultSettings()
	st.IsPro = true
	sel := Select(evs, st, "", now)
	if titles(sel.Events) != "recent,old" {
		t.Fatalf("selection=%s, want most recently due first", titles(sel.Events))
	}
}

func TestSelectEmpty(t *testing.T) {
	sel := Select(nil, models.DefaultSettings(), "", now)
	if sel.Primary != nil || len(sel.Events) != 0 {
		t.Fatalf("selection=%+v", sel)
	}
}

func TestSelectFixedByWidget(t *testing.T) {
	evs := []models.Event{ev("near", time.Hour), ev("pinned", 5*24*time.Hour)}
	st := models.DefaultSettings()
	st.WidgetAutoSelectPolicy = models.WidgetFixedByWidget

	if sel := Select(evs, st, "pinned", now); sel.Primary.ID != "pinned" || len(sel.Events) != 1 {
		t.Fatalf("fixed selection=%s", titles(sel.Events))
	}
	// Nearest policy ignores the configured id.
	if sel := Select(evs, models.DefaultSettings(), "pinned", now); sel.Primary.ID != "near" {
		t.Fatalf("nearest selection=%s", titles(sel.Events))
	}
	// A completed pinned event falls back to automatic selection.
	done := now
	evs[1].CompletedAt = &done
	if sel := Select(evs, st, "pinned", now); sel.Primary.ID != "near" {
		t.Fatalf("completed pin selection=%s", titles(sel.Events))
	}
}

func TestEntryPlaceholders(t *testing.T) {
	e := Renderer{}.NewEntry(now, Selection{})
	if e.DisplayText() != NoEventsText || e.InlineText() != NoEventsText {
		t.Fatalf("display=%q inline=%q", e.DisplayText(), e.InlineText())
	}
	if e.Countdown() != NoCountdownText || e.Color() != NoEventColor {
		t.Fatalf("countdown=%q color=%q", e.Countdown(), e.Color())
	}
	if v := e.View(); v.URL != "" || v.EventID != "" {
		t.Fatalf("view=%+v", v)
	}
}

func TestEntryRendering(t *testing.T) {
	party := "🎉"
	e := ev("EV", 3*24*time.Hour)
	e.Title = "Anniversary party"
	e.Emoji = &party
	r := Renderer{Calc: countdown.New(countdown.English, time.UTC), MaxLength: 12, PostDue: models.PostDueElapsed}
	entry := r.NewEntry(now, Selection{Primary: &e})

	if got := entry.DisplayText(); got != "Anniversa 3d" {
		t.Fatalf("DisplayText=%q", got)
	}
	if got := entry.InlineText(); got != "🎉 Annivers 3d" {
		t.Fatalf("InlineText=%q", got)
	}
	if got := entry.Countdown(); got != "3d" {
		t.Fatalf("Countdown=%q", got)
	}
	if entry.Color() != "orange" || len(entry.Events) != 1 {
		t.Fatalf("color=%q events=%d", entry.Color(), len(entry.Events))
	}

	late := r.NewEntry(now.Add(4*24*time.Hour), Selection{Primary: &e})
	if got := late.Countdown(); got != "elapsed 1d" {
		t.Fatalf("post-due Countdown=%q", got)
	}
}

func TestBuildTimeline(t *testing.T) {
	evs := []models.Event{ev("soon", 90*time.Minute), ev("later", 48*time.Hour)}
	tl := Renderer{}.BuildTimeline(evs, models.DefaultSettings(), "", now)

	if len(tl.Entries) != 25 {
		t.Fatalf("entries=%d, want 25", len(tl.Entries))
	}
	if !tl.NextUpdate.Equal(now.Add(12 * time.Hour)) {
		t.Fatalf("NextUpdate=%v", tl.NextUpdate)
	}
	if !tl.Entries[24].Date.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("last entry at %v", tl.Entries[24].Date)
	}
	if tl.Entries[0].Event.ID != "soon" {
		t.Fatalf("hour 0 primary=%s", tl.Entries[0].Event.ID)
	}
	// Two hours in, "soon" is past due and "later" takes over.
	if tl.Entries[2].Event.ID != "later" {
		t.Fatalf("hour 2 primary=%s", tl.Entries[2].Event.ID)
	}

	snap := tl.Snapshot(now)
	if len(snap.Entries) != 25 || snap.Entries[0].URL != EventURL("soon") {
		t.Fatalf("snapshot=%+v", snap.Entries[0])
	}
}

func TestDeepLinks(t *testing.T) {
	id := "3F2504E0-4F89-11D3-9A0C-0305E82C3301"
	link := EventURL(id)
	if link != "countdown://event/"+id {
		t.Fatalf("EventURL=%q", link)
	}

	tests := []struct {
		raw     string
		id      string
		handled bool
	}{
		{link, id, true},
		{"countdown://event/" + strings.ToLower(id), id, true},
		{"countdown://event/not-a-uuid", "", true},
		{"countdown://event", "", true},
		{"countdown://settings/" + id, "", false},
		{"https://event/" + id, "", false},
	}
	for _, tt := range tests {
		gotID, handled := ParseURL(tt.raw)
		if gotID != tt.id || handled != tt.handled {
			t.Fatalf("ParseURL(%q)=(%q,%v), want (%q,%v)", tt.raw, gotID, handled, tt.id, tt.handled)
		}
	}
}
