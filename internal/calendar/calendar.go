// Package calendar exports events as an iCalendar feed and imports VEVENTs
// back as new events.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"countdown/internal/logger"
	"countdown/internal/reminders"
	"countdown/pkg/models"
)

const (
	ProductID = "-//countdown//countdown CLI//EN"

	propEmoji     = ical.ComponentProperty("X-COUNTDOWN-EMOJI")
	propCompleted = ical.ComponentProperty("X-COUNTDOWN-COMPLETED")
	propColor     = ical.ComponentProperty("COLOR")
	propColorID   = ical.ComponentProperty("X-COUNTDOWN-COLOR-ID")
)

// Export writes one VEVENT per event and one VALARM per reminder window
// still ahead of now.
func Export(w io.Writer, evs []models.Event, planner *reminders.Planner, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, e := range evs {
		ve := cal.AddEvent(e.ID)
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetDtStampTime(now)
		ve.SetModifiedAt(e.UpdatedAt)
		ve.SetSummary(e.Title)
		if e.IsAllDay {
			ve.SetAllDayStartAt(e.TargetDate)
			ve.SetAllDayEndAt(e.TargetDate.AddDate(0, 0, 1))
		} else {
			ve.SetStartAt(e.TargetDate)
			ve.SetEndAt(e.TargetDate)
		}
		ve.SetProperty(propColor, models.ColorName(e.ColorID))
		ve.SetProperty(propColorID, strconv.Itoa(e.ColorID))
		if e.Emoji != nil && *e.Emoji != "" {
			ve.SetProperty(propEmoji, *e.Emoji)
		}
		if e.CompletedAt != nil {
			ve.SetProperty(propCompleted, e.CompletedAt.UTC().Format(time.RFC3339))
			continue
		}

		for _, win := range planner.Plan(now, e.TargetDate, e.IsAllDay, e.NotifyPolicy) {
			req := reminders.NewRequest(e, win)
			alarm := ve.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(Trigger(win.FireAt.Sub(e.TargetDate)))
			alarm.SetProperty(ical.ComponentPropertyDescription, req.Body)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	logger.Debugf("exported %d events", len(evs))
	return nil
}

// Trigger renders an offset from DTSTART as an RFC 5545 duration, e.g.
// -PT24H or PT8H30M.
func Trigger(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int64(d / time.Hour)
	m := int64((d % time.Hour) / time.Minute)
	switch {
	case m == 0:
		return fmt.Sprintf("%sPT%dH", sign, h)
	case h == 0:
		return fmt.Sprintf("%sPT%dM", sign, m)
	}
	return fmt.Sprintf("%sPT%dH%dM", sign, h, m)
}

// ParseTrigger is the inverse of Trigger for the hour/minute forms it
// produces plus whole days (-P1D).
func ParseTrigger(s string) (time.Duration, error) {
	v := strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(v, "-"):
		neg = true
		v = v[1:]
	case strings.HasPrefix(v, "+"):
		v = v[1:]
	}
	if !strings.HasPrefix(v, "P") {
		return 0, fmt.Errorf("trigger %q: not a duration", s)
	}
	v = v[1:]

	var d time.Duration
	inTime := false
	num := ""
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
			continue
		case r == 'T':
			inTime = true
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return 0, fmt.Errorf("trigger %q: %w", s, err)
		}
		num = ""
		switch {
		case r == 'W' && !inTime:
			d += time.Duration(n) * 7 * 24 * time.Hour
		case r == 'D' && !inTime:
			d += time.Duration(n) * 24 * time.Hour
		case r == 'H' && inTime:
			d += time.Duration(n) * time.Hour
		case r == 'M' && inTime:
			d += time.Duration(n) * time.Minute
		case r == 'S' && inTime:
			d += time.Duration(n) * time.Second
		default:
			return 0, fmt.Errorf("trigger %q: unexpected %q", s, r)
		}
	}
	if num != "" {
		return 0, fmt.Errorf("trigger %q: dangling number", s)
	}
	if neg {
		d = -d
	}
	return d, nil
}

// Import reads VEVENTs from r. Returned events have no ID; the caller
// creates them through the writer so the tier cap applies. All-day dates
// are anchored at midnight in loc.
func Import(r io.Reader, loc *time.Location) ([]models.Event, error) {
	if loc == nil {
		loc = time.Local
	}
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var out []models.Event
	var errs []error
	for _, ve := range cal.Events() {
		e, err := parseVEvent(ve, loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		logger.Warnf("skipped event: %v", err)
	}
	return out, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (models.Event, error) {
	var e models.Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Title = p.Value
	}
	uid := ""
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = p.Value
	}
	if strings.TrimSpace(e.Title) == "" {
		return e, fmt.Errorf("event %q: missing SUMMARY", uid)
	}

	dt := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dt == nil {
		return e, fmt.Errorf("event %q: missing DTSTART", e.Title)
	}
	e.IsAllDay = isDateOnly(dt)

	var start time.Time
	var err error
	if e.IsAllDay {
		start, err = allDayStart(dt.Value, loc)
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return e, fmt.Errorf("event %q: DTSTART: %w", e.Title, err)
	}
	e.TargetDate = start

	if p := ve.GetProperty(propCompleted); p != nil && p.Value != "" {
		done, err := time.Parse(time.RFC3339, strings.TrimSpace(p.Value))
		if err != nil {
			return e, fmt.Errorf("event %q: %s: %w", e.Title, propCompleted, err)
		}
		e.CompletedAt = &done
	}

	if p := ve.GetProperty(propColorID); p != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(p.Value)); err == nil {
			e.ColorID = n
		}
	} else if p := ve.GetProperty(propColor); p != nil {
		e.ColorID = colorIndex(p.Value)
	}
	if p := ve.GetProperty(propEmoji); p != nil && p.Value != "" {
		v := p.Value
		e.Emoji = &v
	}

	for _, c := range ve.Components {
		alarm, ok := c.(*ical.VAlarm)
		if !ok {
			continue
		}
		tp := alarm.GetProperty(ical.ComponentPropertyTrigger)
		if tp == nil {
			continue
		}
		d, err := ParseTrigger(tp.Value)
		if err != nil {
			logger.Debugf("event %q: %v", e.Title, err)
			continue
		}
		applyAlarm(&e.NotifyPolicy, d, e.IsAllDay)
	}
	return e, nil
}

// applyAlarm maps an alarm offset onto the closest reminder window.
func applyAlarm(p *models.NotificationPolicy, d time.Duration, allDay bool) {
	switch {
	case d <= -12*time.Hour:
		p.OneDayBefore = true
	case d < 0 && !allDay:
		p.OneHourBefore = true
	case d >= 0 && allDay:
		p.MorningOfDay = true
	}
}

// allDayStart reads the YYYYMMDD date of a DTSTART value as midnight in loc.
// golang-ical would anchor it in time.Local instead.
func allDayStart(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) < 8 {
		return time.Time{}, fmt.Errorf("bad date %q", value)
	}
	return time.ParseInLocation("20060102", value[:8], loc)
}

func isDateOnly(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func colorIndex(name string) int {
	for i, c := range models.EventColors {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return 0
}
