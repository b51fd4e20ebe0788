package events

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"countdown/pkg/models"
)

// DuplicateSuffix is appended to the title of a duplicated event.
const DuplicateSuffix = " (copy)"

// Manager applies create/update/complete/delete/duplicate to an event
// collection. Each method returns a new slice; the input is left untouched.
type Manager struct {
	// NewID generates identifiers for new events. Defaults to uppercase UUIDs.
	NewID func() string
}

// NewManager returns a Manager that assigns random UUIDs.
func NewManager() *Manager {
	return &Manager{NewID: NewUUIDString}
}

// NewUUIDString generates a new uppercase UUID string.
func NewUUIDString() string {
	return strings.ToUpper(uuid.NewString())
}

func (m *Manager) newID() string {
	if m == nil || m.NewID == nil {
		return NewUUIDString()
	}
	return m.NewID()
}

// Create appends e to the collection after checking the tier cap.
// A missing id or creation time is filled in; UpdatedAt is always now.
func (m *Manager) Create(evs []models.Event, e models.Event, isPro bool, now time.Time) ([]models.Event, models.Event, error) {
	if err := CheckCapacity(evs, isPro); err != nil {
		return evs, models.Event{}, err
	}
	if e.ID == "" {
		e.ID = m.newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	return appendCopy(evs, e), e, nil
}

// Update replaces the stored event with the same id. The id, creation time
// and completion stamp of the stored record are kept.
func (m *Manager) Update(evs []models.Event, e models.Event, now time.Time) ([]models.Event, models.Event, error) {
	i := indexOf(evs, e.ID)
	if i < 0 {
		return evs, models.Event{}, NotFoundError{ID: e.ID}
	}
	stored := evs[i]
	e.CreatedAt = stored.CreatedAt
	e.CompletedAt = stored.CompletedAt
	e.UpdatedAt = now

	out := clone(evs)
	out[i] = e
	return out, e, nil
}

// Complete stamps the event as completed at now.
func (m *Manager) Complete(evs []models.Event, id string, now time.Time) ([]models.Event, models.Event, error) {
	i := indexOf(evs, id)
	if i < 0 {
		return evs, models.Event{}, NotFoundError{ID: id}
	}
	out := clone(evs)
	done := now
	out[i].CompletedAt = &done
	out[i].UpdatedAt = now
	return out, out[i], nil
}

// Delete removes the event and returns the removed record.
func (m *Manager) Delete(evs []models.Event, id string) ([]models.Event, models.Event, error) {
	i := indexOf(evs, id)
	if i < 0 {
		return evs, models.Event{}, NotFoundError{ID: id}
	}
	removed := evs[i]
	out := make([]models.Event, 0, len(evs)-1)
	out = append(out, evs[:i]...)
	out = append(out, evs[i+1:]...)
	return out, removed, nil
}

// Duplicate appends a copy of the event with a fresh id, fresh timestamps,
// no completion stamp and DuplicateSuffix on the title.
func (m *Manager) Duplicate(evs []models.Event, id string, isPro bool, now time.Time) ([]models.Event, models.Event, error) {
	i := indexOf(evs, id)
	if i < 0 {
		return evs, models.Event{}, NotFoundError{ID: id}
	}
	if err := CheckCapacity(evs, isPro); err != nil {
		return evs, models.Event{}, err
	}
	src := evs[i]
	dup := models.Event{
		ID:           m.newID(),
		Title:        src.Title + DuplicateSuffix,
		TargetDate:   src.TargetDate,
		IsAllDay:     src.IsAllDay,
		ColorID:      src.ColorID,
		NotifyPolicy: src.NotifyPolicy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if src.Emoji != nil {
		emoji := *src.Emoji
		dup.Emoji = &emoji
	}
	return appendCopy(evs, dup), dup, nil
}

func clone(evs []models.Event) []models.Event {
	out := make([]models.Event, len(evs))
	copy(out, evs)
	return out
}

func appendCopy(evs []models.Event, e models.Event) []models.Event {
	out := make([]models.Event, 0, len(evs)+1)
	out = append(out, evs...)
	return append(out, e)
}
