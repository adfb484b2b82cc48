package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"freezeframe/internal/api"
	"freezeframe/internal/infrastructure/logging"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the commands over a loopback HTTP API",
	Example: `  # Serve on the configured port (default 47600)
  freezectl serve

  # Serve on a custom port
  freezectl serve --port 9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "server port (default is server.port)")
	v.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	a.Startup(ctx)
	defer a.Shutdown(context.Background())

	server := api.NewServer(a, logging.WithComponent(logger, "api"))
	return server.Start(ctx, cfg.Server.Port)
}
