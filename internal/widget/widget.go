// Package widget selects the events a widget shows and renders its
// hourly timeline.
package widget

import (
	"sort"
	"time"

	"countdown/internal/countdown"
	"countdown/internal/events"
	"countdown/pkg/models"
)

const (
	// TimelineHours is the span covered by one timeline, inclusive of hour 0.
	TimelineHours = 24
	// RefreshAfter is when the host should ask for a new timeline.
	RefreshAfter = 12 * time.Hour

	NoEventsText    = "No events"
	NoCountdownText = "---"
	NoEventColor    = "gray"
)

// Selection is the outcome of Select: the primary event (lock screen and
// inline surfaces) and the list shown on the home screen.
type Selection struct {
	Primary *models.Event
	Events  []models.Event
}

// Limit returns how many events a widget lists for the tier.
func Limit(isPro bool) int {
	if isPro {
		return 2
	}
	return 1
}

// Select picks the events to show at now.
//
// With the fixedByWidget policy a configured, non-completed event wins.
// Otherwise upcoming events come first, nearest first, followed by past-due
// active events, most recently due first.
func Select(evs []models.Event, st models.Settings, configuredID string, now time.Time) Selection {
	if st.WidgetAutoSelectPolicy == models.WidgetFixedByWidget && configuredID != "" {
		if e, ok := events.Find(evs, configuredID); ok && events.IsActive(e) {
			return Selection{Primary: &e, Events: []models.Event{e}}
		}
	}

	ordered := events.Upcoming(evs, now)
	var past []models.Event
	for _, e := range events.Active(evs) {
		if events.IsPastDue(e, now) {
			past = append(past, e)
		}
	}
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].TargetDate.After(past[j].TargetDate)
	})
	ordered = append(ordered, past...)

	if n := Limit(st.IsPro); len(ordered) > n {
		ordered = ordered[:n]
	}
	if len(ordered) == 0 {
		return Selection{}
	}
	first := ordered[0]
	return Selection{Primary: &first, Events: ordered}
}

// Renderer holds what every entry needs to format itself.
type Renderer struct {
	Calc      *countdown.Calculator
	MaxLength int
	PostDue   models.PostDueDisplayPolicy
}

func (r Renderer) calc() *countdown.Calculator {
	if r.Calc == nil {
		return &countdown.Calculator{}
	}
	return r.Calc
}

func (r Renderer) maxLength() int {
	if r.MaxLength <= 0 {
		return countdown.DefaultWidgetLength
	}
	return r.MaxLength
}

// Entry is the widget state at one instant.
type Entry struct {
	Date   time.Time
	Event  *models.Event
	Events []models.Event
	r      Renderer
}

// NewEntry builds the entry for date from a selection.
func (r Renderer) NewEntry(date time.Time, sel Selection) Entry {
	evs := sel.Events
	if len(evs) == 0 && sel.Primary != nil {
		evs = []models.Event{*sel.Primary}
	}
	return Entry{Date: date, Event: sel.Primary, Events: evs, r: r}
}

// DisplayText is the single-line widget text.
func (e Entry) DisplayText() string {
	if e.Event == nil {
		return NoEventsText
	}
	return e.r.calc().FormatForWidget(e.Date, e.Event.TargetDate, e.Event.Title, e.r.maxLength())
}

// Countdown is the main countdown label of the primary event.
func (e Entry) Countdown() string {
	if e.Event == nil {
		return NoCountdownText
	}
	return e.CountdownFor(*e.Event)
}

// CountdownFor is the main countdown label of any listed event.
func (e Entry) CountdownFor(ev models.Event) string {
	return e.r.calc().Compute(e.Date, ev.TargetDate, ev.IsAllDay, e.r.PostDue).Main
}

// InlineText is the accessory-inline widget text.
func (e Entry) InlineText() string {
	if e.Event == nil {
		return NoEventsText
	}
	return e.r.calc().FormatForInlineWidget(e.Date, e.Event.TargetDate, e.Event.Title, e.Event.Emoji)
}

// Color is the palette name of the primary event, or gray.
func (e Entry) Color() string {
	if e.Event == nil {
		return NoEventColor
	}
	return models.ColorName(e.Event.ColorID)
}

// Timeline is a sequence of hourly entries plus the refresh instant.
type Timeline struct {
	Entries    []Entry
	NextUpdate time.Time
}

// BuildTimeline renders TimelineHours+1 hourly entries starting at now.
// Selection is recomputed for every entry so an event that falls due
// mid-timeline moves behind the upcoming ones.
func (r Renderer) BuildTimeline(evs []models.Event, st models.Settings, configuredID string, now time.Time) Timeline {
	entries := make([]Entry, 0, TimelineHours+1)
	for h := 0; h <= TimelineHours; h++ {
		at := now.Add(time.Duration(h) * time.Hour)
		entries = append(entries, r.NewEntry(at, Select(evs, st, configuredID, at)))
	}
	return Timeline{Entries: entries, NextUpdate: now.Add(RefreshAfter)}
}

// EntryView is the serialized form of an entry.
type EntryView struct {
	Date      time.Time `json:"date"`
	EventID   string    `json:"eventId,omitempty"`
	Display   string    `json:"display"`
	Countdown string    `json:"countdown"`
	Inline    string    `json:"inline"`
	Color     string    `json:"color"`
	URL       string    `json:"url,omitempty"`
	Listed    []string  `json:"listed,omitempty"`
}

// Snapshot is what the watch daemon writes to widget.json.
type Snapshot struct {
	GeneratedAt time.Time   `json:"generatedAt"`
	NextUpdate  time.Time   `json:"nextUpdate"`
	Entries     []EntryView `json:"entries"`
}

// View converts e for serialization.
func (e Entry) View() EntryView {
	v := EntryView{
		Date:      e.Date,
		Display:   e.DisplayText(),
		Countdown: e.Countdown(),
		Inline:    e.InlineText(),
		Color:     e.Color(),
	}
	if e.Event != nil {
		v.EventID = e.Event.ID
		v.URL = EventURL(e.Event.ID)
	}
	for _, ev := range e.Events {
		v.Listed = append(v.Listed, ev.Title+" "+e.CountdownFor(ev))
	}
	return v
}

// Snapshot serializes the timeline generated at now.
func (t Timeline) Snapshot(now time.Time) Snapshot {
	s := Snapshot{GeneratedAt: now, NextUpdate: t.NextUpdate, Entries: make([]EntryView, 0, len(t.Entries))}
	for _, e := range t.Entries {
		s.Entries = append(s.Entries, e.View())
	}
	return s
}
