// Package events classifies, sorts, gates and mutates collections of events.
//
// Every function is pure: it reads the supplied collection and the supplied
// current time and never modifies its inputs.
package events

import (
	"sort"
	"strings"
	"time"

	"countdown/pkg/models"
)

// State is the lifecycle state of an event at a given instant.
type State string

const (
	StateUpcoming  State = "upcoming"
	StatePastDue   State = "past_due"
	StateCompleted State = "completed"
)

// IsCompleted reports whether the event carries a completion timestamp.
func IsCompleted(e models.Event) bool {
	return e.CompletedAt != nil
}

// IsPastDue reports whether now is strictly after the target instant.
// Completion is not considered.
func IsPastDue(e models.Event, now time.Time) bool {
	return now.After(e.TargetDate)
}

// IsActive reports whether the event has not been completed. Past-due events
// stay active until completed.
func IsActive(e models.Event) bool {
	return !IsCompleted(e)
}

// StateOf classifies e at now.
func StateOf(e models.Event, now time.Time) State {
	switch {
	case IsCompleted(e):
		return StateCompleted
	case IsPastDue(e, now):
		return StatePastDue
	default:
		return StateUpcoming
	}
}

// Active returns the non-completed events ordered by ascending target date.
// Ties keep their original order.
func Active(evs []models.Event) []models.Event {
	out := filter(evs, IsActive)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TargetDate.Before(out[j].TargetDate)
	})
	return out
}

// Completed returns the completed events, most recently updated first.
func Completed(evs []models.Event) []models.Event {
	out := filter(evs, IsCompleted)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Upcoming returns active events whose target is not yet past, earliest first.
func Upcoming(evs []models.Event, now time.Time) []models.Event {
	out := filter(evs, func(e models.Event) bool {
		return !IsCompleted(e) && !IsPastDue(e, now)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TargetDate.Before(out[j].TargetDate)
	})
	return out
}

// NearestUpcoming returns the earliest active event that is not past due.
func NearestUpcoming(evs []models.Event, now time.Time) (models.Event, bool) {
	up := Upcoming(evs, now)
	if len(up) == 0 {
		return models.Event{}, false
	}
	return up[0], true
}

// CountByState tallies events per state at now.
func CountByState(evs []models.Event, now time.Time) map[State]int {
	counts := map[State]int{StateUpcoming: 0, StatePastDue: 0, StateCompleted: 0}
	for _, e := range evs {
		counts[StateOf(e, now)]++
	}
	return counts
}

// Find returns the event with the exact id.
func Find(evs []models.Event, id string) (models.Event, bool) {
	if i := indexOf(evs, id); i >= 0 {
		return evs[i], true
	}
	return models.Event{}, false
}

// FindByPrefix resolves a full event id from a case-insensitive prefix.
// It returns "" when nothing matches.
func FindByPrefix(evs []models.Event, partial string) string {
	p := strings.ToLower(strings.TrimSpace(partial))
	if p == "" {
		return ""
	}
	for _, e := range evs {
		if strings.ToLower(e.ID) == p {
			return e.ID
		}
	}
	for _, e := range evs {
		if strings.HasPrefix(strings.ToLower(e.ID), p) {
			return e.ID
		}
	}
	return ""
}

func filter(evs []models.Event, keep func(models.Event) bool) []models.Event {
	out := make([]models.Event, 0, len(evs))
	for _, e := range evs {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func indexOf(evs []models.Event, id string) int {
	for i := range evs {
		if evs[i].ID == id {
			return i
		}
	}
	return -1
}
