// Package cmd provides the CLI commands for dockb.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dockb/dockb/internal/config"
	"github.com/dockb/dockb/internal/errors"
	"github.com/dockb/dockb/internal/logging"
	"github.com/dockb/dockb/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the dockb CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dockb",
		Short: "Document knowledge base with full-text search",
		Long: `dockb indexes markdown documents with YAML frontmatter into a
persistent SQLite index and answers full-text and metadata queries.

It serves the knowledge base to AI clients over MCP and keeps the index
synchronized with on-disk documents through incremental reconciliation.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if loggingCleanup != nil {
				loggingCleanup()
			}
		},
	}

	cmd.SetVersionTemplate("dockb version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.dockb/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newReindexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
		return err
	}
	return nil
}

// loadConfig loads configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err)
	}
	if debugMode {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// setupLogging initializes file logging for all commands.
func setupLogging() error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}
	// CLI commands write their own stdout; logs go to the file only
	logCfg.WriteToStderr = false

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	loggingCleanup = cleanup
	return nil
}
