package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark an event as complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := w.Resolve(cmd.Context(), args[0])
		if err != nil {
			return describe(err)
		}
		e, err := w.CompleteEvent(cmd.Context(), id)
		if err != nil {
			return describe(err)
		}
		fmt.Printf("✅ Completed: %s\n", e.Title)
		return nil
	},
}
