package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fim/pkg/fim/config"
	"github.com/jamesainslie/fim/pkg/fim/logging"
)

// bootstrap loads configuration and starts logging. It runs before every
// command as the root PersistentPreRunE.
func (a *app) bootstrap(cmd *cobra.Command, _ []string) error {
	config.Setup(a.v, a.cfgFile)
	if err := config.Read(a.v); err != nil {
		return err
	}

	cfg, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	if a.v.GetBool("no_journal") {
		cfg.Journal.Enabled = false
	}
	a.cfg = cfg

	// The log file is a diagnostic aid; fim keeps working without it.
	if err := initializeLogging(cfg, a.v.GetBool("verbose")); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: logging disabled: %v\n", err)
	}

	logger.Debug("configuration loaded",
		"config_file", a.v.ConfigFileUsed(),
		"baseline", cfg.Baseline,
		"journal", cfg.Journal.Enabled,
	)
	return nil
}

// initializeLogging starts the logging system from cfg. Verbose mode mirrors
// debug output to stderr.
func initializeLogging(cfg *config.Config, verbose bool) error {
	settings := cfg.LoggingSettings()
	if settings.Path == "" {
		if err := config.EnsureStateDir(); err != nil {
			return err
		}
	}
	if verbose {
		settings.ConsoleLevel = "debug"
	}
	return logging.Init(settings)
}
