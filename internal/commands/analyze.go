package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"PriceOracle/internal/notifier"
)

var (
	analyzeDays int
	analyzeJSON bool
)

// analyzeCmd prints a one-off prediction report
var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Print the prediction report for one symbol",
	Example: `  oracle analyze BTC
  oracle analyze eth --days 14 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntVarP(&analyzeDays, "days", "d", 0, "forecast horizon in days (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	days := analyzeDays
	if days == 0 {
		days = a.cfg.Forecast.Days
	}
	p, err := a.collector.Predict(ctx, args[0], days)
	if err != nil {
		return err
	}
	if err := a.recorder.RecordPrediction(ctx, p); err != nil {
		a.log.WithError(err).Warn("record prediction")
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	_, err = fmt.Fprintln(out, notifier.FormatPlain(notifier.FormatPrediction(p)))
	return err
}
