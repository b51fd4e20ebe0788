// Package countdown turns a target instant into the short labels shown in
// lists and widgets.
//
// All arithmetic works on elapsed seconds between two instants and truncates
// at every unit boundary. Only the calendar subtitle depends on a location.
package countdown

import (
	"fmt"
	"time"

	"countdown/pkg/models"
)

const (
	secondsPerDay    = 86400
	secondsPerHour   = 3600
	secondsPerMinute = 60

	// farFutureDays is the day count above which the date subtitle is dropped.
	farFutureDays = 30

	// InlineTitleWidth is the fixed title width of the inline widget.
	InlineTitleWidth = 8
	// DefaultWidgetLength is the widget text budget used when none is configured.
	DefaultWidgetLength = 20
	// DefaultEmoji is shown by the inline widget for events without an emoji.
	DefaultEmoji = "📅"
)

// Labels holds the words and unit suffixes used in countdown strings.
type Labels struct {
	Completed string
	Elapsed   string
	// ElapsedSep separates the elapsed marker from the amount.
	ElapsedSep string
	Day        string
	Hour       string
	Minute     string
}

// English is the default label set ("3d", "elapsed 3d", "completed").
var English = Labels{
	Completed:  "completed",
	Elapsed:    "elapsed",
	ElapsedSep: " ",
	Day:        "d",
	Hour:       "h",
	Minute:     "m",
}

// Japanese labels ("3日", "経過3日", "完了").
var Japanese = Labels{
	Completed:  "完了",
	Elapsed:    "経過",
	ElapsedSep: "",
	Day:        "日",
	Hour:       "時間",
	Minute:     "分",
}

// LabelsFor returns the label set for a locale name, defaulting to English.
func LabelsFor(locale string) Labels {
	switch locale {
	case "ja", "ja_JP", "ja-JP":
		return Japanese
	}
	return English
}

// Result is a structured countdown: a primary label and an optional subtitle.
type Result struct {
	Main string
	Sub  *string
}

// SubOrEmpty returns the subtitle or "" when there is none.
func (r Result) SubOrEmpty() string {
	if r.Sub == nil {
		return ""
	}
	return *r.Sub
}

// Calculator formats countdowns. The zero value uses English labels and UTC.
type Calculator struct {
	Labels   Labels
	Location *time.Location
}

// New returns a Calculator with the given labels and location.
func New(labels Labels, loc *time.Location) *Calculator {
	return &Calculator{Labels: labels, Location: loc}
}

func (c *Calculator) labels() Labels {
	if c.Labels == (Labels{}) {
		return English
	}
	return c.Labels
}

func (c *Calculator) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// parts splits an interval into whole days, remaining hours and remaining minutes.
func parts(d time.Duration) (days, hours, minutes int64) {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = -secs
	}
	days = secs / secondsPerDay
	hours = (secs % secondsPerDay) / secondsPerHour
	minutes = (secs % secondsPerHour) / secondsPerMinute
	return days, hours, minutes
}

// Compute returns the countdown for target as seen at now.
//
// isAllDay is accepted for call-site symmetry; it does not change the output.
func (c *Calculator) Compute(now, target time.Time, isAllDay bool, policy models.PostDueDisplayPolicy) Result {
	delta := target.Sub(now)
	if delta <= 0 {
		return c.pastDue(delta, policy)
	}
	return c.upcoming(delta, target)
}

func (c *Calculator) upcoming(delta time.Duration, target time.Time) Result {
	l := c.labels()
	days, hours, minutes := parts(delta)
	switch {
	case days > farFutureDays:
		return Result{Main: fmt.Sprintf("%d%s", days, l.Day)}
	case days >= 1:
		sub := target.In(c.location()).Format("1/2")
		return Result{Main: fmt.Sprintf("%d%s", days, l.Day), Sub: &sub}
	case hours >= 1:
		return Result{Main: fmt.Sprintf("%d%s", hours, l.Hour)}
	default:
		return Result{Main: fmt.Sprintf("%d%s", minutes, l.Minute)}
	}
}

func (c *Calculator) pastDue(delta time.Duration, policy models.PostDueDisplayPolicy) Result {
	l := c.labels()
	if policy != models.PostDueElapsed {
		return Result{Main: l.Completed}
	}
	days, hours, _ := parts(delta)
	if days >= 1 {
		return Result{Main: fmt.Sprintf("%s%s%d%s", l.Elapsed, l.ElapsedSep, days, l.Day)}
	}
	return Result{Main: fmt.Sprintf("%s%s%d%s", l.Elapsed, l.ElapsedSep, hours, l.Hour)}
}

// Token returns the single-unit countdown used by widget surfaces: the
// completed label when target is not in the future, otherwise the coarsest
// non-zero unit.
func (c *Calculator) Token(now, target time.Time) string {
	l := c.labels()
	delta := target.Sub(now)
	if delta <= 0 {
		return l.Completed
	}
	days, hours, minutes := parts(delta)
	switch {
	case days > 0:
		return fmt.Sprintf("%d%s", days, l.Day)
	case hours > 0:
		return fmt.Sprintf("%d%s", hours, l.Hour)
	default:
		return fmt.Sprintf("%d%s", minutes, l.Minute)
	}
}

// FormatForWidget returns "<title> <token>" fitted into maxLength runes.
func (c *Calculator) FormatForWidget(now, target time.Time, title string, maxLength int) string {
	token := c.Token(now, target)
	width := maxLength - runeLen(token) - 1
	return Truncate(title, width) + " " + token
}

// FormatForInlineWidget returns "<emoji> <title> <token>" with the title
// clipped to InlineTitleWidth runes.
func (c *Calculator) FormatForInlineWidget(now, target time.Time, title string, emoji *string) string {
	mark := DefaultEmoji
	if emoji != nil && *emoji != "" {
		mark = *emoji
	}
	return mark + " " + Truncate(title, InlineTitleWidth) + " " + c.Token(now, target)
}

// Truncate returns the first n runes of s. A negative n is treated as zero.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func runeLen(s string) int {
	return len([]rune(s))
}
