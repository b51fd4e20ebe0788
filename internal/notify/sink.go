package notify

import (
	"context"
	"fmt"
	"io"

	"countdown/internal/logger"
	"countdown/internal/reminders"
)

// Sink presents a due reminder to the user.
type Sink interface {
	Deliver(ctx context.Context, r reminders.Request) error
}

// WriterSink prints reminders as "🔔 Title: Body" lines.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Deliver(ctx context.Context, r reminders.Request) error {
	_, err := fmt.Fprintf(s.W, "🔔 %s: %s\n", r.Title, r.Body)
	return err
}

// LogSink reports reminders through the logger at info level.
type LogSink struct{}

func (LogSink) Deliver(ctx context.Context, r reminders.Request) error {
	logger.Info("reminder due", "id", r.Identifier, "title", r.Title, "body", r.Body)
	return nil
}

// MultiSink delivers to every sink in order and stops at the first error.
type MultiSink []Sink

func (m MultiSink) Deliver(ctx context.Context, r reminders.Request) error {
	for _, s := range m {
		if err := s.Deliver(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
