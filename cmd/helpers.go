package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"countdown/internal/events"
	"countdown/internal/ui"
	"countdown/pkg/models"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// nowFunc is the wall clock; tests replace it.
var nowFunc = time.Now

// parseWhen builds a target date from YYYY-MM-DD and an optional HH:MM.
// Without a clock the event is all-day and anchored at local midnight.
func parseWhen(date, clock string, loc *time.Location) (time.Time, bool, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", date)
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return d, true, nil
	}
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid time %q (use HH:MM)", clock)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), false, nil
}

// notifyNames maps CLI names to policy fields.
var notifyNames = map[string]func(*models.NotificationPolicy){
	"1day":    func(p *models.NotificationPolicy) { p.OneDayBefore = true },
	"day":     func(p *models.NotificationPolicy) { p.OneDayBefore = true },
	"1hour":   func(p *models.NotificationPolicy) { p.OneHourBefore = true },
	"hour":    func(p *models.NotificationPolicy) { p.OneHourBefore = true },
	"morning": func(p *models.NotificationPolicy) { p.MorningOfDay = true },
}

// parseNotify parses a comma-separated window list such as "1day,morning".
// "none" or "" disables every window; "all" enables them all.
func parseNotify(s string) (models.NotificationPolicy, error) {
	var p models.NotificationPolicy
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		switch name {
		case "", "none":
			continue
		case "all":
			p = models.NotificationPolicy{OneDayBefore: true, OneHourBefore: true, MorningOfDay: true}
			continue
		}
		set, ok := notifyNames[name]
		if !ok {
			return models.NotificationPolicy{}, fmt.Errorf("unknown reminder %q (use 1day, 1hour, morning, all or none)", part)
		}
		set(&p)
	}
	return p, nil
}

// formatNotify is the inverse of parseNotify.
func formatNotify(p models.NotificationPolicy) string {
	var parts []string
	if p.OneDayBefore {
		parts = append(parts, "1day")
	}
	if p.OneHourBefore {
		parts = append(parts, "1hour")
	}
	if p.MorningOfDay {
		parts = append(parts, "morning")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// formatTarget renders the target date in the configured zone.
func formatTarget(e models.Event) string {
	t := e.TargetDate.In(loc)
	if e.IsAllDay {
		return t.Format(dateLayout)
	}
	return t.Format(dateLayout + " " + clockLayout)
}

// cleanTitle trims s and rejects a blank title.
func cleanTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("title must not be empty")
	}
	return s, nil
}

// optionalEmoji maps "" to nil.
func optionalEmoji(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// loadAll returns the collection and settings.
func loadAll(ctx context.Context) ([]models.Event, models.Settings, error) {
	evs, err := st.LoadEvents(ctx)
	if err != nil {
		return nil, models.Settings{}, err
	}
	s, err := st.LoadSettings(ctx)
	if err != nil {
		return nil, models.Settings{}, err
	}
	return evs, s, nil
}

// describe turns engine errors into user-facing messages.
func describe(err error) error {
	if err == nil {
		return nil
	}
	if events.IsCapacityExceeded(err) {
		return errors.New(ui.PaywallHint(err))
	}
	var nf events.NotFoundError
	if errors.As(err, &nf) {
		return fmt.Errorf("❌ event %q not found", nf.ID)
	}
	return err
}

// eventLine is the one-line listing form of an event.
func eventLine(e models.Event, now time.Time, policy models.PostDueDisplayPolicy) string {
	res := calc.Compute(now, e.TargetDate, e.IsAllDay, policy)
	label := res.Main
	if sub := res.SubOrEmpty(); sub != "" {
		label += " " + sub
	}
	if events.IsCompleted(e) {
		label = "✓"
	}
	return fmt.Sprintf("%s %s %s  %s  [%s]  (%s)",
		ui.Swatch(models.ColorName(e.ColorID)),
		e.EmojiOr("•"),
		e.Title,
		ui.Render(ui.Gold, label),
		formatTarget(e),
		ui.Render(ui.Muted, e.ShortID()))
}
