package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "console",
		Short:        "Clinic management console",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		loginCmd(&configPath),
		logoutCmd(&configPath),
		whoamiCmd(&configPath),
		appointmentsCmd(&configPath),
		prescriptionsCmd(&configPath),
		reportsCmd(&configPath),
		eventsCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
