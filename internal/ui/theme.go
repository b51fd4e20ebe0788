// Package ui holds the CLI theme: a few lipgloss styles, icons and
// terminal detection.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"countdown/internal/countdown"
	"countdown/internal/events"
)

const (
	IconCalendar = "📅"
	IconPlus     = "➕"
	IconDone     = "✅"
	IconTrash    = "🗑️"
	IconCopy     = "📋"
	IconBell     = "🔔"
	IconStar     = "⭐"
	IconLock     = "🔒"
	IconWarn     = "⚠️"
	IconClock    = "⏳"
	IconLink     = "🔗"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

// palette maps event color names to terminal colors.
var palette = map[string]lipgloss.Color{
	"blue":   lipgloss.Color("33"),
	"green":  lipgloss.Color("42"),
	"orange": lipgloss.Color("214"),
	"purple": lipgloss.Color("135"),
	"pink":   lipgloss.Color("205"),
	"gray":   cMuted,
}

// styled is false when stdout is not a terminal; Render then returns plain text.
var styled = term.IsTerminal(int(os.Stdout.Fd()))

// SetStyled forces styling on or off.
func SetStyled(on bool) { styled = on }

// Styled reports whether output is styled.
func Styled() bool { return styled }

// Render applies s when styling is enabled.
func Render(s lipgloss.Style, text string) string {
	if !styled {
		return text
	}
	return s.Render(text)
}

// Width returns the terminal width, or fallback when unknown.
func Width(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Render(Title, icon+title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Render(Key, label+":"), value)
}

// StateText colors an event state.
func StateText(s events.State) string {
	switch s {
	case events.StateUpcoming:
		return Render(H2, "upcoming")
	case events.StatePastDue:
		return Render(Warn, "past due")
	case events.StateCompleted:
		return Render(Good, "completed")
	default:
		return Render(Muted, string(s))
	}
}

// Swatch renders a colored dot for a palette name.
func Swatch(color string) string {
	c, ok := palette[color]
	if !ok {
		c = cMuted
	}
	return Render(lipgloss.NewStyle().Foreground(c), "●")
}

// Clip shortens s to width runes, marking the cut with "…".
func Clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if len([]rune(s)) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return countdown.Truncate(s, width-1) + "…"
}

// PaywallHint is printed when a tier cap blocks a write.
func PaywallHint(err error) string {
	return fmt.Sprintf("%s %s\n   %s", IconLock, Render(Warn, err.Error()),
		Render(Muted, "Upgrade with: countdown pro verify <receipt>"))
}
