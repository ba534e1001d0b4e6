package commands

import (
	"os"

	"github.com/spf13/cobra"

	"PriceOracle/internal/config"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Crypto price analytics and forecasting service",
	Long: `Price Oracle computes technical indicators, a short-horizon linear forecast
and a trading signal for crypto assets.

It serves the analytics over a JSON API, refreshes a watchlist on a cron
schedule and answers Telegram bot commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "path to the YAML config file")
}
