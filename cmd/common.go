package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loayabdalslam/Orchestrator/pkg/config"
	"github.com/loayabdalslam/Orchestrator/pkg/logging"
)

// loadConfig reads the configuration and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = debugOutput
	}
	if cmd.Flags().Changed("no-color") {
		cfg.NoColor = noColor
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.New(logging.Options{
		FilePath: cfg.LogFile,
		Console:  cmd.ErrOrStderr(),
		Debug:    cfg.Debug,
		NoColor:  cfg.NoColor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return logger, nil
}
