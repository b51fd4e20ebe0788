package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"countdown/internal/widget"
	"countdown/pkg/models"
)

var (
	addDate   string
	addTime   string
	addColor  int
	addEmoji  string
	addNotify string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an event",
	Long: `Add a countdown event.

Without --time the event is all-day and counts down to local midnight.

Examples:
  countdown add "Exam" -d 2026-12-01
  countdown add "Flight" -d 2026-12-20 -t 09:30 -e ✈️ -n 1day,1hour`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, err := cleanTitle(args[0])
		if err != nil {
			return err
		}
		if addDate == "" {
			return fmt.Errorf("date is required (use -d YYYY-MM-DD)")
		}
		target, allDay, err := parseWhen(addDate, addTime, loc)
		if err != nil {
			return err
		}
		policy, err := parseNotify(addNotify)
		if err != nil {
			return err
		}
		e, err := w.AddEvent(cmd.Context(), models.Event{
			Title:        title,
			TargetDate:   target,
			IsAllDay:     allDay,
			ColorID:      addColor,
			Emoji:        optionalEmoji(addEmoji),
			NotifyPolicy: policy,
		})
		if err != nil {
			return describe(err)
		}
		fmt.Printf("✅ Added: '%s' → %s  (%s)\n", e.Title, formatTarget(e), e.ShortID())
		fmt.Printf("   %s\n", widget.EventURL(e.ID))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Target date (YYYY-MM-DD)")
	addCmd.Flags().StringVarP(&addTime, "time", "t", "", "Target time (HH:MM); omit for an all-day event")
	addCmd.Flags().IntVarP(&addColor, "color", "c", 0, "Color index (0 blue, 1 green, 2 orange, 3 purple, 4 pink)")
	addCmd.Flags().StringVarP(&addEmoji, "emoji", "e", "", "Emoji shown before the title")
	addCmd.Flags().StringVarP(&addNotify, "notify", "n", "", "Reminders: 1day, 1hour, morning, all or none")
}
