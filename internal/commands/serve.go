package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"PriceOracle/internal/api"
	"PriceOracle/internal/notifier"
	"PriceOracle/internal/scheduler"
)

var runOnStart bool

// serveCmd runs the API, the scheduler and the Telegram bot
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server, watchlist scheduler and Telegram bot",
	Long: `Start all long-running components:
  - JSON API under /api and Prometheus metrics under /metrics
  - cron jobs for the watchlist refresh and the daily digest
  - Telegram long polling, when a bot token is configured

Examples:
  oracle serve
  oracle serve --config ./configs/prod.yaml --run-on-start`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "refresh the watchlist immediately")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	var tn *notifier.TelegramNotifier
	var out notifier.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logrus.NewEntry(a.log))
		out = tn
	}

	sched := scheduler.NewScheduler(a.collector, out, a.recorder, cfg.Watchlist, cfg.Forecast.Days, cfg.Forecast.MaxDays, logrus.NewEntry(a.log))
	sched.Metrics = a.metrics
	if err := sched.RegisterAll(ctx, cfg.Schedule.RefreshCron, cfg.Schedule.DigestCron); err != nil {
		return err
	}
	sched.Start(ctx)
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		a.log.Info("telegram polling started")
	}
	if runOnStart {
		go func() {
			if _, err := sched.Refresh(ctx); err != nil {
				a.log.WithError(err).Error("initial refresh")
			}
		}()
	}

	srv := api.NewServer(a.collector, a.recorder, a.metrics, api.Options{
		Addr:         cfg.HTTP.Addr,
		Provider:     cfg.DataSource.Provider,
		Watchlist:    cfg.Watchlist,
		DefaultDays:  cfg.Forecast.Days,
		HealthChecks: a.checks,
	}, logrus.NewEntry(a.log))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		a.log.Info("shutdown signal received, stopping")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
