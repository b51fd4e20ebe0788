// Package cmd provides the CLI commands for countdown.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"countdown/internal/config"
	"countdown/internal/countdown"
	"countdown/internal/logger"
	"countdown/internal/notify"
	"countdown/internal/reminders"
	"countdown/internal/store"
	"countdown/internal/writer"
)

// verbosity is incremented once per -v flag: -v=1 (info), -vv=2 (debug).
var verbosity int

// configPath overrides config.Path().
var configPath string

// shared per-invocation state (set in PersistentPreRunE)
var (
	cfg     *config.Config
	loc     *time.Location
	st      store.Store
	spool   *notify.Spool
	planner *reminders.Planner
	calc    *countdown.Calculator
	w       *writer.Writer
)

// RootCmd is the root cobra command.
var RootCmd = &cobra.Command{
	Use:           "countdown",
	Short:         "Countdown tracker for deadlines and occasions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetLevel(verbosity)

		// Commands that need no state
		switch cmd.Name() {
		case "version", "help", "completion", "keygen", "issue":
			return nil
		}

		if err := config.LoadEnv(config.Dir()); err != nil {
			logger.Warnf("read .env: %v", err)
		}
		path := configFile()
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg.ApplyEnv()
		logger.Debug("config loaded", "path", path, "storage", cfg.Storage, "data", cfg.DataDir)

		loc, err = cfg.Location()
		if err != nil {
			logger.Warnf("%v (using local time)", err)
		}

		done := logger.Timer("open store")
		st, err = store.Open(cmd.Context(), cfg.Storage, cfg.DataDir)
		done()
		if err != nil {
			return err
		}

		spool = notify.NewSpool(cfg.DataDir)
		planner = &reminders.Planner{Location: loc, MorningHour: cfg.Notifications.MorningHour}
		calc = countdown.New(countdown.LabelsFor(cfg.Locale), loc)
		w = writer.New(st, planner, spool, cfg.Notifications.Enabled)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if st == nil {
			return nil
		}
		return st.Close()
	},
}

// configFile is --config or the default path.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.Path()
}

func init() {
	// CountP increments verbosity each time -v is passed: -v=1, -vv=2
	RootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Verbosity: -v info, -vv debug")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $COUNTDOWN_HOME/config.yaml)")

	RootCmd.AddCommand(
		addCmd,
		editCmd,
		completeCmd,
		deleteCmd,
		duplicateCmd,
		listCmd,
		nextCmd,
		widgetCmd,
		planCmd,
		settingsCmd,
		proCmd,
		seedCmd,
		exportCmd,
		importCmd,
		remindersCmd,
		watchCmd,
		openCmd,
		jsonCmd,
	)
}
