package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RezaEskandarii/cronfire/app"
	"github.com/RezaEskandarii/cronfire/internal/logging"
	"github.com/RezaEskandarii/cronfire/types/config"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X ...commands.Version=v1.2.3".
var Version = "dev"

// ConfigPath is bound to the root --config flag.
var ConfigPath string

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply the schema, start the scheduler and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		container, err := newContainer(ctx)
		if err != nil {
			return err
		}
		defer container.Close()

		if err := container.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		return container.Run(ctx)
	},
}

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := newContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()
		return container.Migrate(cmd.Context())
	},
}

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "cronfire", Version)
	},
}

func newContainer(ctx context.Context) (*app.Container, error) {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Console:  cfg.Log.Console,
		Instance: cfg.Instance,
	}, nil)
	return app.NewContainer(ctx, cfg, app.WithLogger(logger))
}
