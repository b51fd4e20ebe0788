package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"countdown/internal/ui"
)

var (
	remindersReplan bool
	remindersClear  bool
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List, rebuild or clear pending reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		switch {
		case remindersClear:
			if err := spool.CancelAll(ctx); err != nil {
				return err
			}
			fmt.Println("🗑️  Cleared all pending reminders")
			return nil
		case remindersReplan:
			n, err := w.ReplanAll(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%s Scheduled %d reminder(s)\n", ui.IconBell, n)
		}

		pending, err := spool.Pending(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n", ui.Heading(ui.IconBell, fmt.Sprintf("Pending reminders: %d", len(pending))))
		width := ui.Width(100)
		for _, r := range pending {
			line := fmt.Sprintf("%s  %-7s %s: %s", r.FireAt.In(loc).Format(dateLayout+" "+clockLayout), r.Kind, r.Title, r.Body)
			fmt.Println("  " + ui.Clip(line, width-2))
		}
		if !cfg.Notifications.Enabled {
			fmt.Println(ui.Render(ui.Warn, ui.IconWarn+"  Notifications are disabled in config"))
		}
		return nil
	},
}

func init() {
	remindersCmd.Flags().BoolVar(&remindersReplan, "replan", false, "Drop every pending reminder and plan all events again")
	remindersCmd.Flags().BoolVar(&remindersClear, "clear", false, "Drop every pending reminder")
	remindersCmd.MarkFlagsMutuallyExclusive("replan", "clear")
}
