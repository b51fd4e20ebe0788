package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"countdown/internal/events"
	"countdown/pkg/models"
)

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Output events and settings as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		evs, settings, err := loadAll(cmd.Context())
		if err != nil {
			return err
		}
		now := nowFunc()

		type eventView struct {
			models.Event
			State     events.State `json:"state"`
			Countdown string       `json:"countdown"`
		}
		type output struct {
			Settings  models.Settings `json:"settings"`
			Active    []eventView     `json:"active"`
			Completed []eventView     `json:"completed"`
		}
		out := output{Settings: settings, Active: []eventView{}, Completed: []eventView{}}
		for _, e := range evs {
			v := eventView{
				Event:     e,
				State:     events.StateOf(e, now),
				Countdown: calc.Compute(now, e.TargetDate, e.IsAllDay, settings.PostDueDisplay).Main,
			}
			if events.IsCompleted(e) {
				out.Completed = append(out.Completed, v)
			} else {
				out.Active = append(out.Active, v)
			}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}
