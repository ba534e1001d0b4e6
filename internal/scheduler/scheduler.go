package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"PriceOracle/internal/metrics"
	"PriceOracle/internal/model"
	"PriceOracle/internal/notifier"
	"PriceOracle/internal/recorder"
)

const (
	defaultConcurrency = 4
	sendRetries        = 3
)

// Analyzer serves predictions and indicator reports, normally *collector.Collector.
type Analyzer interface {
	Predict(ctx context.Context, symbol string, days int) (*model.Prediction, error)
	Detail(ctx context.Context, symbol string) (*model.SymbolReport, error)
}

// RefreshResult is the outcome of one watchlist pass.
type RefreshResult struct {
	Predictions []*model.Prediction // watchlist order, failures omitted
	Failed      []string
	Changed     []string
}

// Scheduler runs the watchlist refresh and digest jobs and answers bot commands.
type Scheduler struct {
	Cron        *cron.Cron
	Analyzer    Analyzer
	Notifier    notifier.Notifier // nil disables outgoing messages
	Recorder    recorder.Recorder
	Metrics     *metrics.Metrics
	Watchlist   []string
	Days        int
	MaxDays     int
	Concurrency int

	log  *logrus.Entry
	now  func() time.Time
	mu   sync.Mutex
	last map[string]model.Signal
}

// NewScheduler creates a new Scheduler.
func NewScheduler(an Analyzer, n notifier.Notifier, rec recorder.Recorder, watchlist []string, days, maxDays int, log *logrus.Entry) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Analyzer:    an,
		Notifier:    n,
		Recorder:    rec,
		Watchlist:   watchlist,
		Days:        days,
		MaxDays:     maxDays,
		Concurrency: defaultConcurrency,
		log:         log.WithField("component", "scheduler"),
		now:         time.Now,
		last:        make(map[string]model.Signal),
	}
}

// RegisterAll registers the refresh and digest jobs. Jobs run with ctx.
func (s *Scheduler) RegisterAll(ctx context.Context, refreshCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, func() {
		if _, err := s.Refresh(ctx); err != nil {
			s.log.WithError(err).Error("watchlist refresh")
		}
	}); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(digestCron, func() {
		if err := s.Digest(ctx); err != nil {
			s.log.WithError(err).Error("daily digest")
		}
	}); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start seeds the last known signals from the recorder and starts the cron scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.seed(ctx)
	s.Cron.Start()
	s.log.WithField("symbols", len(s.Watchlist)).Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) seed(ctx context.Context) {
	latest, err := s.Recorder.LatestSignals(ctx)
	if err != nil {
		s.log.WithError(err).Warn("load last signals")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for sym, rec := range latest {
		s.last[sym] = rec.Signal
	}
}

// Refresh predicts every watchlist symbol with bounded concurrency, persists the
// results and notifies when a symbol's signal differs from the previous refresh.
func (s *Scheduler) Refresh(ctx context.Context) (*RefreshResult, error) {
	start := s.now()
	s.log.Info("running watchlist refresh")

	preds := make([]*model.Prediction, len(s.Watchlist))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g.SetLimit(limit)

	for i, sym := range s.Watchlist {
		i, sym := i, sym
		g.Go(func() error {
			p, err := s.Analyzer.Predict(gctx, sym, s.Days)
			if err != nil {
				s.log.WithError(err).WithField("symbol", sym).Warn("refresh predict")
				return nil
			}
			preds[i] = p
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &RefreshResult{}
	for i, p := range preds {
		if p == nil {
			res.Failed = append(res.Failed, s.Watchlist[i])
			continue
		}
		res.Predictions = append(res.Predictions, p)
		if err := s.Recorder.RecordPrediction(ctx, p); err != nil {
			s.log.WithError(err).WithField("symbol", p.Symbol).Error("record prediction")
		}
		if prev, changed := s.swapSignal(s.Watchlist[i], p.Verdict.Signal); changed {
			res.Changed = append(res.Changed, s.Watchlist[i])
			s.trySend(ctx, notifier.FormatSignalChange(prev, p))
		}
	}

	if s.Metrics != nil {
		s.Metrics.RefreshDuration.Observe(s.now().Sub(start).Seconds())
	}
	s.log.WithFields(logrus.Fields{
		"ok":      len(res.Predictions),
		"failed":  len(res.Failed),
		"changed": len(res.Changed),
	}).Info("watchlist refresh done")
	return res, nil
}

// swapSignal stores sig as the latest for symbol. A first observation is not a change.
func (s *Scheduler) swapSignal(symbol string, sig model.Signal) (model.Signal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, seen := s.last[symbol]
	s.last[symbol] = sig
	return prev, seen && prev != sig
}

// Digest refreshes the watchlist and sends one summary message.
func (s *Scheduler) Digest(ctx context.Context) error {
	res, err := s.Refresh(ctx)
	if err != nil {
		return err
	}
	s.trySend(ctx, notifier.FormatDigest(res.Predictions, res.Failed, s.now()))
	return nil
}

func (s *Scheduler) trySend(ctx context.Context, msg string) {
	if s.Notifier == nil {
		return
	}
	var err error
	if r, ok := s.Notifier.(notifier.Retrier); ok {
		err = r.SendWithRetry(ctx, msg, sendRetries)
	} else {
		err = s.Notifier.Send(ctx, msg)
	}
	if err != nil {
		s.log.WithError(err).Error("send notification")
	}
}
