package events

import (
	"errors"
	"fmt"
)

// CapacityError is returned when creating an event would exceed the tier cap.
// Callers are expected to offer the pro upgrade.
type CapacityError struct {
	Limit int
	Pro   bool
}

func (e CapacityError) Error() string {
	if e.Pro {
		return fmt.Sprintf("too many active events (limit %d)", e.Limit)
	}
	return fmt.Sprintf("free version is limited to %d active event; upgrade to pro for more", e.Limit)
}

// NotFoundError is returned when an operation references an unknown event id.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("event '%s' not found", e.ID)
}

// IsCapacityExceeded reports whether err is a CapacityError.
func IsCapacityExceeded(err error) bool {
	var capErr CapacityError
	return errors.As(err, &capErr)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
