// Package cli is the modhost command line: it loads configuration, starts
// the host and runs diagnostics or migrations against it.
package cli

import (
	"context"
	"fmt"

	"github.com/compozy/modhost/pkg/config"
	"github.com/compozy/modhost/pkg/logger"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "modhost",
		Short:             "Modular host with per-module data contexts",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
	flags := root.PersistentFlags()
	flags.String("log-level", "", "Log level (debug, info, warn, error, disabled); defaults to runtime.log_level")
	flags.Bool("log-json", false, "Log in JSON format")
	flags.Bool("log-source", false, "Include source locations in logs")
	flags.String("config-dir", ".", "Directory holding config.yaml and its environment overrides")
	flags.String("env", "", "Runtime environment; defaults to RUNTIME_ENVIRONMENT")

	root.AddCommand(
		CheckCmd(),
		MigrateCmd(),
		ServeCmd(),
		VersionCmd(),
	)
	return root
}

// setup loads the configuration and installs the logger. Flags set
// explicitly take precedence over the runtime section.
func setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	dir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		return fmt.Errorf("failed to get config-dir flag: %w", err)
	}
	env, err := cmd.Flags().GetString("env")
	if err != nil {
		return fmt.Errorf("failed to get env flag: %w", err)
	}
	cfg, err := config.NewLoader().LoadDir(ctx, dir, env)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	level, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("log-level") {
		level = cfg.Runtime.LogLevel
	}
	if !cmd.Flags().Changed("log-json") {
		logJSON = cfg.Runtime.LogJSON
	}
	log := logger.SetupLogger(level, logJSON, logSource)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(config.ContextWithConfig(ctx, cfg))
	return nil
}
