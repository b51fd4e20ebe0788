// Package notify is a file-backed stand-in for a notification center:
// pending reminder requests are spooled to disk and delivered by the
// watch daemon once they fall due.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"countdown/internal/config"
	"countdown/internal/logger"
	"countdown/internal/reminders"
)

// PendingFile is the spool file name inside the data directory.
const PendingFile = "pending.json"

// lockSuffix names the flock file next to the spool. The CLI and a running
// watch daemon both rewrite the spool, so every read-modify-write holds it.
const lockSuffix = ".lock"

// Scheduler accepts and withdraws reminder requests.
type Scheduler interface {
	Schedule(ctx context.Context, reqs []reminders.Request) error
	Cancel(ctx context.Context, ids []string) error
	CancelAll(ctx context.Context) error
	Pending(ctx context.Context) ([]reminders.Request, error)
}

// Spool persists pending requests keyed by identifier.
type Spool struct {
	Path string
	mu   sync.Mutex
}

// NewSpool returns a Spool writing to dir/pending.json.
func NewSpool(dir string) *Spool {
	return &Spool{Path: filepath.Join(dir, PendingFile)}
}

// Schedule adds reqs, replacing any pending request with the same identifier.
func (s *Spool) Schedule(ctx context.Context, reqs []reminders.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	return s.update(func(m map[string]reminders.Request) {
		for _, r := range reqs {
			m[r.Identifier] = r
			logger.Debug("scheduled reminder", "id", r.Identifier, "at", r.FireAt.Format(time.RFC3339))
		}
	})
}

// Cancel removes the given identifiers. Unknown identifiers are ignored.
func (s *Spool) Cancel(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.update(func(m map[string]reminders.Request) {
		for _, id := range ids {
			delete(m, id)
		}
	})
}

// CancelAll empties the spool.
func (s *Spool) CancelAll(ctx context.Context) error {
	return s.update(func(m map[string]reminders.Request) {
		for id := range m {
			delete(m, id)
		}
	})
}

// Pending returns every pending request ordered by fire time.
func (s *Spool) Pending(ctx context.Context) ([]reminders.Request, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	m, err := s.load()
	if err != nil {
		return nil, err
	}
	return sorted(m), nil
}

// Apply runs an intent: cancellations always happen, new requests are only
// added when authorized is true.
func (s *Spool) Apply(ctx context.Context, in reminders.Intent, authorized bool) error {
	if err := s.Cancel(ctx, in.Cancel); err != nil {
		return fmt.Errorf("cancel reminders: %w", err)
	}
	if !authorized {
		if len(in.Schedule) > 0 {
			logger.Info("notifications disabled, not scheduling", "count", len(in.Schedule))
		}
		return nil
	}
	if err := s.Schedule(ctx, in.Schedule); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	return nil
}

// Deliver hands every request due at now to sink and removes it from the
// spool. Requests the sink rejects stay pending.
func (s *Spool) Deliver(ctx context.Context, now time.Time, sink Sink) ([]reminders.Request, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	m, err := s.load()
	if err != nil {
		return nil, err
	}
	var (
		delivered []reminders.Request
		errs      []error
	)
	for _, r := range sorted(m) {
		if r.FireAt.After(now) {
			break
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := sink.Deliver(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("deliver %s: %w", r.Identifier, err))
			continue
		}
		delete(m, r.Identifier)
		delivered = append(delivered, r)
	}
	if len(delivered) > 0 {
		if err := s.save(m); err != nil {
			errs = append(errs, err)
		}
	}
	return delivered, errors.Join(errs...)
}

// lock serializes spool access within the process and across processes.
func (s *Spool) lock() (func(), error) {
	s.mu.Lock()
	release, err := lockFile(s.Path + lockSuffix)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("lock %s: %w", filepath.Base(s.Path), err)
	}
	return func() {
		release()
		s.mu.Unlock()
	}, nil
}

func (s *Spool) update(fn func(map[string]reminders.Request)) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()
	m, err := s.load()
	if err != nil {
		return err
	}
	fn(m)
	return s.save(m)
}

func (s *Spool) load() (map[string]reminders.Request, error) {
	m := map[string]reminders.Request{}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return nil, err
	}
	var list []reminders.Request
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(s.Path), err)
	}
	for _, r := range list {
		m[r.Identifier] = r
	}
	return m, nil
}

func (s *Spool) save(m map[string]reminders.Request) error {
	data, err := json.MarshalIndent(sorted(m), "", "  ")
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(s.Path, data)
}

func sorted(m map[string]reminders.Request) []reminders.Request {
	out := make([]reminders.Request, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].FireAt.Before(out[j].FireAt)
		}
		return out[i].Identifier < out[j].Identifier
	})
	return out
}
