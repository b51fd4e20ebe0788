package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"countdown/internal/calendar"
	"countdown/internal/config"
	"countdown/internal/events"
	"countdown/internal/logger"
	"countdown/internal/ui"
)

var (
	exportOutput string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events as an iCalendar feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		evs, err := st.LoadEvents(cmd.Context())
		if err != nil {
			return err
		}
		if !exportAll {
			evs = events.Active(evs)
		}
		if exportOutput == "" || exportOutput == "-" {
			return calendar.Export(os.Stdout, evs, planner, nowFunc())
		}
		var buf bytes.Buffer
		if err := calendar.Export(&buf, evs, planner, nowFunc()); err != nil {
			return err
		}
		if err := config.WriteFileAtomic(exportOutput, buf.Bytes()); err != nil {
			return err
		}
		fmt.Printf("✅ Exported %d event(s) → %s\n", len(evs), exportOutput)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.ics>",
	Short: "Import VEVENTs from an iCalendar file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		parsed, err := calendar.Import(r, loc)
		if err != nil {
			return err
		}
		// Create checks the cap even for completed events, so they are skipped.
		active := events.Active(parsed)
		if skipped := len(parsed) - len(active); skipped > 0 {
			fmt.Printf("%s Skipped %d completed event(s)\n", ui.IconDone, skipped)
		}
		added := 0
		for _, e := range active {
			if _, err := w.AddEvent(cmd.Context(), e); err != nil {
				if events.IsCapacityExceeded(err) {
					logger.Warnf("stopped after %d of %d event(s)", added, len(active))
					return describe(err)
				}
				return err
			}
			added++
		}
		fmt.Printf("✅ Imported %d event(s)\n", added)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "Include completed events")
}
