package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"countdown/internal/entitlement"
	"countdown/internal/logger"
	"countdown/internal/metrics"
	"countdown/internal/notify"
	"countdown/internal/watch"
	"countdown/internal/widget"
)

var (
	watchSchedule string
	watchListen   string
	watchOnce     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Deliver due reminders and refresh widget.json on a schedule",
	Long: `Run the reminder daemon.

Every tick delivers reminders whose time has come, rewrites widget.json in
the data directory and refreshes the Prometheus metrics served on
--listen (/metrics, /healthz). Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if ok, err := entitlement.IsPro(cfg.Entitlement.PublicKey, cfg.Entitlement.Receipt); err != nil {
			logger.Warnf("receipt: %v", err)
		} else if ok {
			if _, err := w.SetPro(ctx, true); err != nil {
				return err
			}
		}

		m := metrics.New()
		wt := &watch.Watcher{
			Store:        st,
			Spool:        spool,
			Sink:         notify.MultiSink{notify.WriterSink{W: os.Stdout}, notify.LogSink{}},
			Metrics:      m,
			Renderer:     widget.Renderer{Calc: calc, MaxLength: cfg.Widget.MaxLength},
			ConfiguredID: cfg.Widget.ConfiguredEvent,
			DataDir:      cfg.DataDir,
		}

		if watchOnce {
			_, err := wt.Tick(ctx, nowFunc())
			return err
		}

		schedule := cfg.Watch.Schedule
		if watchSchedule != "" {
			schedule = watchSchedule
		}
		listen := cfg.Watch.MetricsListen
		if watchListen != "" {
			listen = watchListen
		}

		// A metrics server failure stops the ticker too.
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		var serveErr error
		served := make(chan struct{})
		if listen != "off" {
			go func() {
				defer close(served)
				if err := watch.Serve(ctx, listen, m); err != nil {
					serveErr = err
					cancel()
				}
			}()
		} else {
			close(served)
		}

		err := wt.Run(ctx, schedule, nowFunc)
		cancel()
		<-served
		if err != nil {
			return err
		}
		return serveErr
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "Cron schedule (default watch.schedule)")
	watchCmd.Flags().StringVar(&watchListen, "listen", "", "Metrics address, or off (default watch.metrics_listen)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single tick and exit")
}
