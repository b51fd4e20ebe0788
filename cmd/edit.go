package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"countdown/internal/events"
)

var (
	editTitle  string
	editDate   string
	editTime   string
	editAllDay bool
	editColor  int
	editEmoji  string
	editNotify string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an event (title, date, color, emoji, or reminders)",
	Long: `Update one or more fields on an existing event.

At least one flag must be provided. Only specified fields are changed;
unspecified fields are left unchanged. Reminders are rescheduled.

Examples:
  countdown edit ABC123 --title "New title"
  countdown edit ABC123 --date 2026-03-01 --time 18:00
  countdown edit ABC123 --all-day
  countdown edit ABC123 --emoji "" --notify none`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := cmd.Flags()
		changed := false
		for _, name := range []string{"title", "date", "time", "all-day", "color", "emoji", "notify"} {
			changed = changed || f.Changed(name)
		}
		if !changed {
			return fmt.Errorf("nothing to change (see --help)")
		}
		id, err := w.Resolve(ctx, args[0])
		if err != nil {
			return describe(err)
		}
		evs, err := st.LoadEvents(ctx)
		if err != nil {
			return err
		}
		e, ok := events.Find(evs, id)
		if !ok {
			return describe(events.NotFoundError{ID: id})
		}

		if f.Changed("title") {
			if e.Title, err = cleanTitle(editTitle); err != nil {
				return err
			}
		}
		if f.Changed("date") || f.Changed("time") || f.Changed("all-day") {
			cur := e.TargetDate.In(loc)
			date := cur.Format(dateLayout)
			if f.Changed("date") {
				date = editDate
			}
			clock := ""
			if !e.IsAllDay {
				clock = cur.Format(clockLayout)
			}
			if f.Changed("time") {
				clock = editTime
			}
			if editAllDay {
				clock = ""
			}
			var target time.Time
			target, e.IsAllDay, err = parseWhen(date, clock, loc)
			if err != nil {
				return err
			}
			e.TargetDate = target
		}
		if f.Changed("color") {
			e.ColorID = editColor
		}
		if f.Changed("emoji") {
			e.Emoji = optionalEmoji(editEmoji)
		}
		if f.Changed("notify") {
			if e.NotifyPolicy, err = parseNotify(editNotify); err != nil {
				return err
			}
		}

		updated, err := w.EditEvent(ctx, e)
		if err != nil {
			return describe(err)
		}
		fmt.Printf("✅ Updated: %s → %s\n", updated.Title, formatTarget(updated))
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editDate, "date", "d", "", "New date (YYYY-MM-DD)")
	editCmd.Flags().StringVarP(&editTime, "time", "t", "", "New time (HH:MM); empty makes the event all-day")
	editCmd.Flags().BoolVar(&editAllDay, "all-day", false, "Make the event all-day")
	editCmd.Flags().IntVarP(&editColor, "color", "c", 0, "New color index")
	editCmd.Flags().StringVarP(&editEmoji, "emoji", "e", "", "New emoji (empty clears it)")
	editCmd.Flags().StringVarP(&editNotify, "notify", "n", "", "Reminders: 1day, 1hour, morning, all or none")
}
