package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"countdown/internal/events"
	"countdown/internal/ui"
	"countdown/pkg/models"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE: func(cmd *cobra.Command, args []string) error {
		evs, settings, err := loadAll(cmd.Context())
		if err != nil {
			return err
		}
		now := nowFunc()
		counts := events.CountByState(evs, now)
		fmt.Printf("\n%s\n", ui.Heading(ui.IconCalendar, fmt.Sprintf("Events: %d (%d/%d active)",
			len(evs), events.ActiveCount(evs), events.CapFor(settings.IsPro))))

		width := ui.Width(100)
		printGroup := func(state events.State, items []models.Event) {
			if len(items) == 0 {
				return
			}
			fmt.Printf("\n%s (%d)\n", ui.StateText(state), counts[state])
			for _, e := range items {
				fmt.Println("  " + ui.Clip(eventLine(e, now, settings.PostDueDisplay), width-2))
			}
		}

		printGroup(events.StateUpcoming, events.Upcoming(evs, now))

		var past []models.Event
		for _, e := range events.Active(evs) {
			if events.IsPastDue(e, now) {
				past = append(past, e)
			}
		}
		sort.SliceStable(past, func(i, j int) bool { return past[i].TargetDate.After(past[j].TargetDate) })
		printGroup(events.StatePastDue, past)

		if listAll {
			done := events.Completed(evs)
			sort.SliceStable(done, func(i, j int) bool { return done[i].CompletedAt.After(*done[j].CompletedAt) })
			printGroup(events.StateCompleted, done)
		}

		if events.ShouldShowPaywall(evs, settings.IsPro) {
			fmt.Printf("\n%s\n", ui.Render(ui.Muted, ui.IconLock+" Free tier is full. Upgrade with: countdown pro verify <receipt>"))
		}
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the nearest upcoming event",
	RunE: func(cmd *cobra.Command, args []string) error {
		evs, settings, err := loadAll(cmd.Context())
		if err != nil {
			return err
		}
		now := nowFunc()
		e, ok := events.NearestUpcoming(evs, now)
		if !ok {
			fmt.Println(ui.Render(ui.Muted, "No upcoming events"))
			return nil
		}
		res := calc.Compute(now, e.TargetDate, e.IsAllDay, settings.PostDueDisplay)
		body := fmt.Sprintf("%s %s\n%s", e.EmojiOr(ui.IconClock), ui.Render(ui.Title, e.Title), ui.Render(ui.Gold, res.Main))
		if sub := res.SubOrEmpty(); sub != "" {
			body += " " + sub
		}
		body += "\n" + ui.Render(ui.Muted, formatTarget(e))
		if ui.Styled() {
			body = ui.Panel.Render(body)
		}
		fmt.Println(body)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include completed events")
}
