package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"countdown/internal/events"
	"countdown/internal/ui"
	"countdown/internal/widget"
)

var (
	widgetInline   bool
	widgetTimeline bool
	widgetEvent    string
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Render the widget for the current moment",
	Long: `Render what the widget shows right now.

By default prints the single-line text followed by every listed event.
--inline prints the accessory-inline text. --timeline prints the hourly
timeline as JSON, in the same form the watch daemon writes to widget.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		evs, settings, err := loadAll(cmd.Context())
		if err != nil {
			return err
		}
		configured := cfg.Widget.ConfiguredEvent
		if widgetEvent != "" {
			configured = widgetEvent
		}
		r := widget.Renderer{Calc: calc, MaxLength: cfg.Widget.MaxLength, PostDue: settings.PostDueDisplay}
		now := nowFunc()

		if widgetTimeline {
			snap := r.BuildTimeline(evs, settings, configured, now).Snapshot(now)
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		entry := r.NewEntry(now, widget.Select(evs, settings, configured, now))
		if widgetInline {
			fmt.Println(entry.InlineText())
			return nil
		}
		fmt.Printf("%s %s\n", ui.Swatch(entry.Color()), entry.DisplayText())
		for _, e := range entry.Events {
			fmt.Printf("  %s %-20s %s\n", e.EmojiOr("•"), ui.Clip(e.Title, 20), ui.Render(ui.Gold, entry.CountdownFor(e)))
		}
		if entry.Event != nil {
			fmt.Println(ui.Render(ui.Muted, ui.IconLink+" "+widget.EventURL(entry.Event.ID)))
		}
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <url>",
	Short: "Resolve a countdown:// deep link to its event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, handled := widget.ParseURL(args[0])
		if !handled {
			return fmt.Errorf("not a %s:// link: %s", widget.Scheme, args[0])
		}
		if id == "" {
			fmt.Println(ui.Render(ui.Muted, "Link has no valid event id; opening the event list"))
			return listCmd.RunE(cmd, nil)
		}
		evs, settings, err := loadAll(cmd.Context())
		if err != nil {
			return err
		}
		e, ok := events.Find(evs, events.FindByPrefix(evs, id))
		if !ok {
			return describe(events.NotFoundError{ID: id})
		}
		fmt.Println(eventLine(e, nowFunc(), settings.PostDueDisplay))
		fmt.Println(ui.LabelValue("Reminders", formatNotify(e.NotifyPolicy)))
		return nil
	},
}

func init() {
	widgetCmd.Flags().BoolVar(&widgetInline, "inline", false, "Print the inline accessory text")
	widgetCmd.Flags().BoolVar(&widgetTimeline, "timeline", false, "Print the 24h timeline as JSON")
	widgetCmd.Flags().StringVar(&widgetEvent, "event", "", "Event id to pin (overrides widget.configured_event)")
}
