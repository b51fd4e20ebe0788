// Package models contains data types for countdown events and settings.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single user-tracked deadline or occasion.
type Event struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	TargetDate   time.Time          `json:"targetDate"`
	IsAllDay     bool               `json:"isAllDay"`
	ColorID      int                `json:"colorId"`
	Emoji        *string            `json:"emoji,omitempty"`
	NotifyPolicy NotificationPolicy `json:"notifyPolicy"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	CompletedAt  *time.Time         `json:"completedAt,omitempty"`
}

// EmojiOr returns the event emoji, or fallback when none is set.
func (e *Event) EmojiOr(fallback string) string {
	if e.Emoji == nil || *e.Emoji == "" {
		return fallback
	}
	return *e.Emoji
}

// ShortID returns the first 8 characters of the event ID.
func (e *Event) ShortID() string {
	if len(e.ID) > 8 {
		return e.ID[:8]
	}
	return e.ID
}

// NotificationPolicy selects which reminder windows are wanted for an event.
type NotificationPolicy struct {
	OneDayBefore  bool `json:"oneDayBefore"`
	OneHourBefore bool `json:"oneHourBefore"`
	MorningOfDay  bool `json:"morningOfDay"`
}

// Any reports whether at least one reminder window is enabled.
func (p NotificationPolicy) Any() bool {
	return p.OneDayBefore || p.OneHourBefore || p.MorningOfDay
}

// WidgetSelectPolicy governs which event a widget shows without explicit configuration.
type WidgetSelectPolicy string

const (
	WidgetNearestUpcoming WidgetSelectPolicy = "nearestUpcoming"
	WidgetFixedByWidget   WidgetSelectPolicy = "fixedByWidget"
)

// PostDueDisplayPolicy governs how a past-due, non-completed event is rendered.
type PostDueDisplayPolicy string

const (
	PostDueElapsed   PostDueDisplayPolicy = "elapsed"
	PostDueCompleted PostDueDisplayPolicy = "completed"
)

// WidgetSelectPolicyMap maps CLI names to policies.
var WidgetSelectPolicyMap = map[string]WidgetSelectPolicy{
	"nearest":         WidgetNearestUpcoming,
	"nearestupcoming": WidgetNearestUpcoming,
	"fixed":           WidgetFixedByWidget,
	"fixedbywidget":   WidgetFixedByWidget,
}

// PostDueDisplayPolicyMap maps CLI names to policies.
var PostDueDisplayPolicyMap = map[string]PostDueDisplayPolicy{
	"elapsed":   PostDueElapsed,
	"completed": PostDueCompleted,
}

// ParseWidgetSelectPolicy resolves a CLI name (case-insensitive) to a policy.
func ParseWidgetSelectPolicy(name string) (WidgetSelectPolicy, error) {
	if p, ok := WidgetSelectPolicyMap[strings.ToLower(name)]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown widget policy %q (use nearest or fixed)", name)
}

// ParsePostDueDisplayPolicy resolves a CLI name (case-insensitive) to a policy.
func ParsePostDueDisplayPolicy(name string) (PostDueDisplayPolicy, error) {
	if p, ok := PostDueDisplayPolicyMap[strings.ToLower(name)]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown post-due display %q (use elapsed or completed)", name)
}

// Settings is process-wide configuration not owned by any event.
type Settings struct {
	IsPro                  bool                 `json:"isPro"`
	WidgetAutoSelectPolicy WidgetSelectPolicy   `json:"widgetAutoSelectPolicy"`
	PostDueDisplay         PostDueDisplayPolicy `json:"postDueDisplay"`
}

// DefaultSettings returns the settings used on first run.
func DefaultSettings() Settings {
	return Settings{
		IsPro:                  false,
		WidgetAutoSelectPolicy: WidgetNearestUpcoming,
		PostDueDisplay:         PostDueCompleted,
	}
}

// Normalize replaces unknown enum values with defaults.
func (s *Settings) Normalize() {
	switch s.WidgetAutoSelectPolicy {
	case WidgetNearestUpcoming, WidgetFixedByWidget:
	default:
		s.WidgetAutoSelectPolicy = WidgetNearestUpcoming
	}
	switch s.PostDueDisplay {
	case PostDueElapsed, PostDueCompleted:
	default:
		s.PostDueDisplay = PostDueCompleted
	}
}

// EventColors is the fixed palette events index into.
var EventColors = []string{"blue", "green", "orange", "purple", "pink"}

// ColorName returns the palette entry for colorID (modulo the palette size).
func ColorName(colorID int) string {
	n := len(EventColors)
	i := colorID % n
	if i < 0 {
		i += n
	}
	return EventColors[i]
}
