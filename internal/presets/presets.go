// Package presets builds the sample events offered on first run.
package presets

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"countdown/pkg/models"
)

// PaydayRule is the recurrence of the payday preset.
const PaydayRule = "FREQ=MONTHLY;BYMONTHDAY=25"

type titles struct {
	Payday, Trip, Report string
}

var localizedTitles = map[string]titles{
	"en": {Payday: "Payday", Trip: "Trip", Report: "Report deadline"},
	"ja": {Payday: "給料日", Trip: "旅行", Report: "レポート締切"},
}

// NextPayday returns the next 25th of the month strictly after now, at
// midnight in loc.
func NextPayday(now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	r, err := rrule.StrToRRule(PaydayRule)
	if err != nil {
		return time.Time{}, fmt.Errorf("payday rule: %w", err)
	}
	r.DTStart(time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc))
	next := r.After(local, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("payday rule yields no date after %s", local.Format(time.RFC3339))
	}
	return next, nil
}

// Build returns the sample events in display order: payday, trip (two
// months out) and a report deadline (one week out). IDs are left empty.
func Build(now time.Time, loc *time.Location, locale string) ([]models.Event, error) {
	t, ok := localizedTitles[locale]
	if !ok {
		t = localizedTitles["en"]
	}
	payday, err := NextPayday(now, loc)
	if err != nil {
		return nil, err
	}
	return []models.Event{
		{Title: t.Payday, TargetDate: payday, IsAllDay: true, ColorID: 0, Emoji: emoji("💰")},
		{Title: t.Trip, TargetDate: now.AddDate(0, 2, 0), IsAllDay: true, ColorID: 1, Emoji: emoji("✈️")},
		{Title: t.Report, TargetDate: now.AddDate(0, 0, 7), IsAllDay: false, ColorID: 2, Emoji: emoji("📝")},
	}, nil
}

func emoji(s string) *string { return &s }
