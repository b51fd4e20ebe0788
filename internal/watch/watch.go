// Package watch runs the periodic background work: delivering due
// reminders, refreshing the widget snapshot and updating metrics.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"countdown/internal/config"
	"countdown/internal/events"
	"countdown/internal/logger"
	"countdown/internal/metrics"
	"countdown/internal/notify"
	"countdown/internal/store"
	"countdown/internal/widget"
)

// SnapshotFile is the widget timeline written on every tick.
const SnapshotFile = "widget.json"

// Watcher ties the store, the reminder spool and the widget renderer together.
type Watcher struct {
	Store        store.Store
	Spool        *notify.Spool
	Sink         notify.Sink
	Metrics      *metrics.Metrics
	Renderer     widget.Renderer
	ConfiguredID string
	DataDir      string
}

// Result summarizes one tick.
type Result struct {
	Delivered int
	Pending   int
}

// Tick delivers reminders due at now, writes widget.json and refreshes
// metrics. A delivery failure does not stop the snapshot.
func (w *Watcher) Tick(ctx context.Context, now time.Time) (Result, error) {
	start := time.Now()
	defer func() {
		if w.Metrics != nil {
			w.Metrics.ObserveTick(time.Since(start))
		}
	}()

	var res Result
	var errs []error

	delivered, err := w.Spool.Deliver(ctx, now, w.Sink)
	if err != nil {
		errs = append(errs, err)
	}
	res.Delivered = len(delivered)

	pending, err := w.Spool.Pending(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	res.Pending = len(pending)

	evs, err := w.Store.LoadEvents(ctx)
	if err != nil {
		return res, errors.Join(append(errs, fmt.Errorf("load events: %w", err))...)
	}
	st, err := w.Store.LoadSettings(ctx)
	if err != nil {
		return res, errors.Join(append(errs, fmt.Errorf("load settings: %w", err))...)
	}

	if w.Metrics != nil {
		w.Metrics.Delivered(delivered)
		w.Metrics.SetPending(res.Pending)
		w.Metrics.SetEventCounts(events.CountByState(evs, now))
		w.Metrics.SetPro(st.IsPro)
	}

	r := w.Renderer
	r.PostDue = st.PostDueDisplay
	snap := r.BuildTimeline(evs, st, w.ConfiguredID, now).Snapshot(now)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		errs = append(errs, err)
	} else if err := config.WriteFileAtomic(filepath.Join(w.DataDir, SnapshotFile), data); err != nil {
		errs = append(errs, fmt.Errorf("write snapshot: %w", err))
	}

	logger.Debug("tick", "delivered", res.Delivered, "pending", res.Pending, "events", len(evs))
	return res, errors.Join(errs...)
}

// NewParser accepts standard five-field specs with an optional leading
// seconds field, plus descriptors like @every 30s.
func NewParser() cron.Parser {
	return cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// Run ticks once immediately and then on schedule until ctx is done.
func (w *Watcher) Run(ctx context.Context, schedule string, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	tick := func() {
		res, err := w.Tick(ctx, now())
		if err != nil {
			logger.Warnf("watch tick: %v", err)
			return
		}
		if res.Delivered > 0 {
			logger.Info("delivered reminders", "count", res.Delivered, "pending", res.Pending)
		}
	}

	c := cron.New(cron.WithParser(NewParser()))
	if _, err := c.AddFunc(schedule, tick); err != nil {
		return fmt.Errorf("watch schedule %q: %w", schedule, err)
	}
	tick()
	c.Start()
	logger.Info("watching", "schedule", schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Serve exposes metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, m *metrics.Metrics) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
