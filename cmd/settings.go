package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"countdown/internal/config"
	"countdown/internal/ui"
	"countdown/pkg/models"
)

var (
	settingsPostDue      string
	settingsWidgetPolicy string
	settingsWidgetEvent  string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change display settings",
	Long: `Show or change display settings.

Examples:
  countdown settings
  countdown settings --post-due elapsed
  countdown settings --widget-policy fixed --widget-event ABC123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := cmd.Flags()

		var postDue models.PostDueDisplayPolicy
		var policy models.WidgetSelectPolicy
		var err error
		if f.Changed("post-due") {
			if postDue, err = models.ParsePostDueDisplayPolicy(settingsPostDue); err != nil {
				return err
			}
		}
		if f.Changed("widget-policy") {
			if policy, err = models.ParseWidgetSelectPolicy(settingsWidgetPolicy); err != nil {
				return err
			}
		}

		s, err := w.UpdateSettings(ctx, func(s *models.Settings) {
			if postDue != "" {
				s.PostDueDisplay = postDue
			}
			if policy != "" {
				s.WidgetAutoSelectPolicy = policy
			}
		})
		if err != nil {
			return err
		}

		if f.Changed("widget-event") {
			id := ""
			if settingsWidgetEvent != "" {
				if id, err = w.Resolve(ctx, settingsWidgetEvent); err != nil {
					return describe(err)
				}
			}
			cfg.Widget.ConfiguredEvent = id
			path := configFile()
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
		}

		tier := "free"
		if s.IsPro {
			tier = ui.Render(ui.Gold, ui.IconStar+" pro")
		}
		fmt.Println(ui.LabelValue("Tier", tier))
		fmt.Println(ui.LabelValue("Widget policy", s.WidgetAutoSelectPolicy))
		fmt.Println(ui.LabelValue("Widget event", orNone(cfg.Widget.ConfiguredEvent)))
		fmt.Println(ui.LabelValue("Past-due display", s.PostDueDisplay))
		fmt.Println(ui.LabelValue("Notifications", cfg.Notifications.Enabled))
		fmt.Println(ui.LabelValue("Storage", cfg.Storage+" ("+cfg.DataDir+")"))
		fmt.Println(ui.LabelValue("Timezone", loc))
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func init() {
	settingsCmd.Flags().StringVar(&settingsPostDue, "post-due", "", "Past-due display: elapsed or completed")
	settingsCmd.Flags().StringVar(&settingsWidgetPolicy, "widget-policy", "", "Widget selection: nearest or fixed")
	settingsCmd.Flags().StringVar(&settingsWidgetEvent, "widget-event", "", "Event pinned by the widget (empty clears it)")
}
