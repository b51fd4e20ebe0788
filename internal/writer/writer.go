// Package writer handles write operations on countdown events.
package writer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"countdown/internal/events"
	"countdown/internal/logger"
	"countdown/internal/presets"
	"countdown/internal/reminders"
	"countdown/internal/store"
	"countdown/pkg/models"
)

// Notifier applies reminder intents. *notify.Spool implements it.
type Notifier interface {
	Apply(ctx context.Context, in reminders.Intent, authorized bool) error
	CancelAll(ctx context.Context) error
}

// Writer loads the collection, runs the engine, saves, then updates reminders.
type Writer struct {
	Store    store.Store
	Manager  *events.Manager
	Planner  *reminders.Planner
	Notifier Notifier
	// Authorized mirrors notification permission. Cancellations always run.
	Authorized bool
	Now        func() time.Time
}

// New creates a Writer with the default id generator and the wall clock.
func New(st store.Store, planner *reminders.Planner, n Notifier, authorized bool) *Writer {
	return &Writer{
		Store:      st,
		Manager:    events.NewManager(),
		Planner:    planner,
		Notifier:   n,
		Authorized: authorized,
		Now:        time.Now,
	}
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

func (w *Writer) load(ctx context.Context) ([]models.Event, models.Settings, error) {
	evs, err := w.Store.LoadEvents(ctx)
	if err != nil {
		return nil, models.Settings{}, fmt.Errorf("load events: %w", err)
	}
	st, err := w.Store.LoadSettings(ctx)
	if err != nil {
		return nil, models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return evs, st, nil
}

func (w *Writer) save(ctx context.Context, evs []models.Event) error {
	if err := w.Store.SaveEvents(ctx, evs); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	return nil
}

// reschedule applies the reminder intent for e. Failures are logged, not
// returned: the event change is already persisted.
func (w *Writer) reschedule(ctx context.Context, in reminders.Intent) {
	if w.Notifier == nil || in.Empty() {
		return
	}
	if err := w.Notifier.Apply(ctx, in, w.Authorized); err != nil {
		logger.Warnf("reminder update failed: %v", err)
	}
}

// Resolve maps a full or partial id to an event id.
func (w *Writer) Resolve(ctx context.Context, partial string) (string, error) {
	evs, err := w.Store.LoadEvents(ctx)
	if err != nil {
		return "", fmt.Errorf("load events: %w", err)
	}
	id := events.FindByPrefix(evs, partial)
	if id == "" {
		return "", events.NotFoundError{ID: partial}
	}
	return id, nil
}

// AddEvent creates e, subject to the tier cap.
func (w *Writer) AddEvent(ctx context.Context, e models.Event) (models.Event, error) {
	evs, st, err := w.load(ctx)
	if err != nil {
		return models.Event{}, err
	}
	now := w.now()
	evs, created, err := w.Manager.Create(evs, e, st.IsPro, now)
	if err != nil {
		return models.Event{}, err
	}
	if err := w.save(ctx, evs); err != nil {
		return models.Event{}, err
	}
	logger.Infof("Created event: %q (%s)", created.Title, created.ShortID())
	w.reschedule(ctx, w.Planner.Reschedule(created, now))
	return created, nil
}

// EditEvent replaces the editable fields of the stored event with e's.
func (w *Writer) EditEvent(ctx context.Context, e models.Event) (models.Event, error) {
	evs, _, err := w.load(ctx)
	if err != nil {
		return models.Event{}, err
	}
	now := w.now()
	evs, updated, err := w.Manager.Update(evs, e, now)
	if err != nil {
		return models.Event{}, err
	}
	if err := w.save(ctx, evs); err != nil {
		return models.Event{}, err
	}
	logger.Infof("Updated event: %q (%s)", updated.Title, updated.ShortID())
	w.reschedule(ctx, w.Planner.Reschedule(updated, now))
	return updated, nil
}

// CompleteEvent marks id completed and drops its reminders.
func (w *Writer) CompleteEvent(ctx context.Context, id string) (models.Event, error) {
	evs, _, err := w.load(ctx)
	if err != nil {
		return models.Event{}, err
	}
	evs, done, err := w.Manager.Complete(evs, id, w.now())
	if err != nil {
		return models.Event{}, err
	}
	if err := w.save(ctx, evs); err != nil {
		return models.Event{}, err
	}
	logger.Infof("Completed event: %q", done.Title)
	w.reschedule(ctx, reminders.Cancellation(done.ID))
	return done, nil
}

// DeleteEvent removes id and drops its reminders.
func (w *Writer) DeleteEvent(ctx context.Context, id string) (models.Event, error) {
	evs, _, err := w.load(ctx)
	if err != nil {
		return models.Event{}, err
	}
	evs, removed, err := w.Manager.Delete(evs, id)
	if err != nil {
		return models.Event{}, err
	}
	if err := w.save(ctx, evs); err != nil {
		return models.Event{}, err
	}
	logger.Infof("Deleted event: %q", removed.Title)
	w.reschedule(ctx, reminders.Cancellation(removed.ID))
	return removed, nil
}

// DuplicateEvent copies id into a new active event, subject to the tier cap.
func (w *Writer) DuplicateEvent(ctx context.Context, id string) (models.Event, error) {
	evs, st, err := w.load(ctx)
	if err != nil {
		return models.Event{}, err
	}
	now := w.now()
	evs, dup, err := w.Manager.Duplicate(evs, id, st.IsPro, now)
	if err != nil {
		return models.Event{}, err
	}
	if err := w.save(ctx, evs); err != nil {
		return models.Event{}, err
	}
	logger.Infof("Duplicated event: %q (%s)", dup.Title, dup.ShortID())
	w.reschedule(ctx, w.Planner.Reschedule(dup, now))
	return dup, nil
}

// SetPro records the entitlement flag.
func (w *Writer) SetPro(ctx context.Context, isPro bool) (models.Settings, error) {
	return w.UpdateSettings(ctx, func(s *models.Settings) { s.IsPro = isPro })
}

// UpdateSettings loads the settings, applies fn and saves the result.
func (w *Writer) UpdateSettings(ctx context.Context, fn func(*models.Settings)) (models.Settings, error) {
	st, err := w.Store.LoadSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	fn(&st)
	st.Normalize()
	if err := w.Store.SaveSettings(ctx, st); err != nil {
		return models.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	logger.Info("settings saved", "pro", st.IsPro, "widget", st.WidgetAutoSelectPolicy, "postDue", st.PostDueDisplay)
	return st, nil
}

// Seed adds the preset events when the collection is empty, stopping at
// the tier cap. It returns the events created.
func (w *Writer) Seed(ctx context.Context, loc *time.Location, locale string) ([]models.Event, error) {
	evs, st, err := w.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(evs) > 0 {
		logger.Debugf("seed skipped: %d events present", len(evs))
		return nil, nil
	}
	now := w.now()
	samples, err := presets.Build(now, loc, locale)
	if err != nil {
		return nil, err
	}

	var created []models.Event
	for _, p := range samples {
		next, e, err := w.Manager.Create(evs, p, st.IsPro, now)
		if err != nil {
			if events.IsCapacityExceeded(err) {
				break
			}
			return nil, err
		}
		evs = next
		created = append(created, e)
	}
	if err := w.save(ctx, evs); err != nil {
		return nil, err
	}
	for _, e := range created {
		w.reschedule(ctx, w.Planner.Reschedule(e, now))
	}
	logger.Infof("Seeded %d preset event(s)", len(created))
	return created, nil
}

// ReplanAll drops every pending reminder and plans each event again.
// It returns the number of reminders scheduled.
func (w *Writer) ReplanAll(ctx context.Context) (int, error) {
	if w.Notifier == nil {
		return 0, errors.New("no notifier configured")
	}
	evs, _, err := w.load(ctx)
	if err != nil {
		return 0, err
	}
	if err := w.Notifier.CancelAll(ctx); err != nil {
		return 0, fmt.Errorf("clear reminders: %w", err)
	}
	now := w.now()
	n := 0
	var errs []error
	for _, e := range evs {
		in := w.Planner.Reschedule(e, now)
		if err := w.Notifier.Apply(ctx, in, w.Authorized); err != nil {
			errs = append(errs, err)
			continue
		}
		if w.Authorized {
			n += len(in.Schedule)
		}
	}
	return n, errors.Join(errs...)
}
