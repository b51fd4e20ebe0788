package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"countdown/internal/ui"
	"countdown/pkg/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add sample events to an empty collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := w.Seed(cmd.Context(), loc, cfg.Locale)
		if err != nil {
			return describe(err)
		}
		if len(created) == 0 {
			fmt.Println(ui.Render(ui.Muted, "Collection is not empty; nothing seeded"))
			return nil
		}
		now := nowFunc()
		for _, e := range created {
			fmt.Printf("%s Added: %s\n", ui.IconPlus, eventLine(e, now, models.DefaultSettings().PostDueDisplay))
		}
		return nil
	},
}
