package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"countdown/internal/events"
	"countdown/internal/ui"
)

var planCmd = &cobra.Command{
	Use:   "plan <id>",
	Short: "Show the reminder windows still ahead for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := w.Resolve(ctx, args[0])
		if err != nil {
			return describe(err)
		}
		evs, err := st.LoadEvents(ctx)
		if err != nil {
			return err
		}
		e, _ := events.Find(evs, id)
		now := nowFunc()

		fmt.Printf("%s\n", ui.Heading(ui.IconBell, e.Title))
		fmt.Println(ui.LabelValue("Target", formatTarget(e)))
		fmt.Println(ui.LabelValue("State", ui.StateText(events.StateOf(e, now))))
		fmt.Println(ui.LabelValue("Reminders", formatNotify(e.NotifyPolicy)))

		if events.IsCompleted(e) {
			fmt.Println(ui.Render(ui.Muted, "Completed events get no reminders"))
			return nil
		}
		windows := planner.Plan(now, e.TargetDate, e.IsAllDay, e.NotifyPolicy)
		if len(windows) == 0 {
			fmt.Println(ui.Render(ui.Muted, "No reminder windows ahead"))
			return nil
		}
		for _, win := range windows {
			fmt.Printf("  %s %-8s %s\n", ui.IconBell, win.Kind, win.FireAt.In(loc).Format(dateLayout+" "+clockLayout))
		}
		if !cfg.Notifications.Enabled {
			fmt.Println(ui.Render(ui.Warn, ui.IconWarn+"  Notifications are disabled; nothing will be scheduled"))
		}
		return nil
	},
}
