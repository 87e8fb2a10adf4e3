package main

import (
	"fmt"
	"os"

	"github.com/RezaEskandarii/cronfire/cmd/cronfire/commands"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cronfire",
	Short: "cronfire - per-user cron reminders over HTTP",
	Long: `cronfire lets users sign up, log in and register reminders with
five-field cron schedules. Due reminders are delivered through the
configured notifier (log, rabbitmq or redis).

Examples:
  cronfire serve -c cronfire.yaml   # Migrate the schema and start the server
  cronfire migrate                  # Apply the schema only
  cronfire version`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&commands.ConfigPath, "config", "c", "", "path to a config file (yaml, json or toml)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.MigrateCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
