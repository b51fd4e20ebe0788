package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := w.Resolve(cmd.Context(), args[0])
		if err != nil {
			return describe(err)
		}
		e, err := w.DeleteEvent(cmd.Context(), id)
		if err != nil {
			return describe(err)
		}
		fmt.Printf("🗑️  Deleted: %s\n", e.Title)
		return nil
	},
}

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy an event under a new id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := w.Resolve(cmd.Context(), args[0])
		if err != nil {
			return describe(err)
		}
		e, err := w.DuplicateEvent(cmd.Context(), id)
		if err != nil {
			return describe(err)
		}
		fmt.Printf("📋 Duplicated: '%s'  (%s)\n", e.Title, e.ShortID())
		return nil
	},
}
