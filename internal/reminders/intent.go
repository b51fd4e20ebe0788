package reminders

import (
	"fmt"
	"time"

	"countdown/pkg/models"
)

const defaultEmoji = "📅"

// Request is a single reminder ready to hand to a notification center.
type Request struct {
	Identifier string    `json:"identifier"`
	EventID    string    `json:"eventId"`
	Kind       Kind      `json:"kind"`
	FireAt     time.Time `json:"fireAt"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
}

// Intent is an idempotent instruction: drop Cancel, then add Schedule.
type Intent struct {
	Cancel   []string
	Schedule []Request
}

// Empty reports whether the intent does nothing.
func (in Intent) Empty() bool {
	return len(in.Cancel) == 0 && len(in.Schedule) == 0
}

// Reschedule cancels every identifier of e and schedules the windows still
// ahead. Completed events only get the cancellation.
func (p *Planner) Reschedule(e models.Event, now time.Time) Intent {
	in := Cancellation(e.ID)
	if e.CompletedAt != nil {
		return in
	}
	for _, w := range p.Plan(now, e.TargetDate, e.IsAllDay, e.NotifyPolicy) {
		in.Schedule = append(in.Schedule, NewRequest(e, w))
	}
	return in
}

// Cancellation drops every reminder of eventID.
func Cancellation(eventID string) Intent {
	return Intent{Cancel: AllIdentifiers(eventID)}
}

// NewRequest builds the notification content for window w of e.
func NewRequest(e models.Event, w Window) Request {
	title, body := content(e, w.Kind)
	return Request{
		Identifier: Identifier(e.ID, w.Kind),
		EventID:    e.ID,
		Kind:       w.Kind,
		FireAt:     w.FireAt,
		Title:      title,
		Body:       body,
	}
}

func content(e models.Event, kind Kind) (string, string) {
	mark := e.EmojiOr(defaultEmoji)
	switch kind {
	case KindDayBefore:
		return "Tomorrow is the day!", fmt.Sprintf("%s %s is tomorrow", mark, e.Title)
	case KindHourBefore:
		return "Coming up soon!", fmt.Sprintf("%s %s starts in 1 hour", mark, e.Title)
	case KindMorningOf:
		return "Today is the day!", fmt.Sprintf("%s %s is today", mark, e.Title)
	}
	return e.Title, mark + " " + e.Title
}
