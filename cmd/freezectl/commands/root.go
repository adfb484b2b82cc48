package commands

import (
	"fmt"
	"os"

	"freezeframe/internal/app"
	"freezeframe/internal/config"
	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	v       = config.NewViper("")
	cfg     *config.Config
	logger  logging.Logger

	rootCmd = &cobra.Command{
		Use:   "freezectl",
		Short: "freezectl - freeze, capture and restore the foreground application",
		Long: `freezectl drives the freezeframe OS primitives from the command line.

It can look up the foreground process and its display scale, suspend and
resume processes, bring windows to the front, capture a window to PNG and
prepare a capture for text recognition. "serve" exposes the same commands
over a loopback HTTP API.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/freezeframe/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human-readable log output")

	v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("log_pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: cmd.ErrOrStderr(),
	})
	apperrors.SetDefaultRetryLogger(logger)
	return nil
}

// newApp builds the command surface from the loaded configuration
func newApp() *app.App {
	return app.NewApp(cfg, logger)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
