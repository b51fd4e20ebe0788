package events

import "countdown/pkg/models"

const (
	// FreeTierCap is the number of simultaneous active events without pro.
	FreeTierCap = 1
	// ProTierCap is the number of simultaneous active events with pro.
	ProTierCap = 100
)

// CapFor returns the active-event cap for the entitlement level.
func CapFor(isPro bool) int {
	if isPro {
		return ProTierCap
	}
	return FreeTierCap
}

// ActiveCount returns the number of non-completed events.
func ActiveCount(evs []models.Event) int {
	n := 0
	for _, e := range evs {
		if IsActive(e) {
			n++
		}
	}
	return n
}

// CanCreateNewEvent reports whether another active event fits under the cap.
func CanCreateNewEvent(evs []models.Event, isPro bool) bool {
	return ActiveCount(evs) < CapFor(isPro)
}

// ShouldShowPaywall reports whether a free user has used up the free slot.
func ShouldShowPaywall(evs []models.Event, isPro bool) bool {
	return !isPro && ActiveCount(evs) >= FreeTierCap
}

// CheckCapacity returns a CapacityError when CanCreateNewEvent is false.
func CheckCapacity(evs []models.Event, isPro bool) error {
	if !CanCreateNewEvent(evs, isPro) {
		return CapacityError{Limit: CapFor(isPro), Pro: isPro}
	}
	return nil
}
