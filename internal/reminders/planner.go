// Package reminders computes which reminder windows of an event are still
// ahead and turns them into scheduling intents for a notification center.
package reminders

import (
	"time"

	"countdown/pkg/models"
)

// Kind names a reminder window. The value is also the identifier suffix.
type Kind string

const (
	KindDayBefore  Kind = "1day"
	KindHourBefore Kind = "1hour"
	KindMorningOf  Kind = "morning"
)

// AllKinds lists every reminder window in a fixed order.
var AllKinds = []Kind{KindDayBefore, KindHourBefore, KindMorningOf}

// DefaultMorningHour is the local hour of the morning-of reminder.
const DefaultMorningHour = 8

// Window is one planned reminder.
type Window struct {
	Kind   Kind
	FireAt time.Time
}

// Planner computes reminder windows. MorningHour is taken as given, so the
// zero value fires morning-of reminders at midnight UTC; NewPlanner supplies
// DefaultMorningHour. Hours outside 0-23 fall back to the default.
type Planner struct {
	Location    *time.Location
	MorningHour int
}

// NewPlanner returns a Planner for loc with the default morning hour.
func NewPlanner(loc *time.Location) *Planner {
	return &Planner{Location: loc, MorningHour: DefaultMorningHour}
}

func (p *Planner) location() *time.Location {
	if p == nil || p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p *Planner) morningHour() int {
	if p == nil || p.MorningHour < 0 || p.MorningHour > 23 {
		return DefaultMorningHour
	}
	return p.MorningHour
}

// Plan returns the enabled windows that fire strictly after now.
// Windows already in the past are dropped silently.
func (p *Planner) Plan(now, target time.Time, isAllDay bool, policy models.NotificationPolicy) []Window {
	var out []Window
	add := func(enabled bool, kind Kind, at time.Time) {
		if enabled && at.After(now) {
			out = append(out, Window{Kind: kind, FireAt: at})
		}
	}

	add(policy.OneDayBefore, KindDayBefore, target.Add(-24*time.Hour))
	if isAllDay {
		add(policy.MorningOfDay, KindMorningOf, p.MorningOf(target))
	} else {
		add(policy.OneHourBefore, KindHourBefore, target.Add(-time.Hour))
	}
	return out
}

// MorningOf returns the morning reminder instant on target's calendar date.
func (p *Planner) MorningOf(target time.Time) time.Time {
	loc := p.location()
	t := target.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), p.morningHour(), 0, 0, 0, loc)
}

// Identifier returns the stable notification id "<eventID>_<kind>".
func Identifier(eventID string, kind Kind) string {
	return eventID + "_" + string(kind)
}

// AllIdentifiers returns the identifiers of every window kind for eventID.
func AllIdentifiers(eventID string) []string {
	ids := make([]string, 0, len(AllKinds))
	for _, k := range AllKinds {
		ids = append(ids, Identifier(eventID, k))
	}
	return ids
}
