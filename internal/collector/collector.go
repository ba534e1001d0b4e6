package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"PriceOracle/internal/analytics"
	"PriceOracle/internal/cache"
	"PriceOracle/internal/metrics"
	"PriceOracle/internal/model"
)

const (
	maxSearchResults = 20
	defaultInterval  = "60"
	defaultLimit     = 200
	maxLimit         = 1000

	// DefaultFetchTimeout bounds a provider fetch once it no longer follows the
	// request that started it.
	DefaultFetchTimeout = 30 * time.Second
)

var validIntervals = map[string]bool{
	"1": true, "3": true, "5": true, "15": true, "30": true, "60": true,
	"120": true, "240": true, "360": true, "720": true, "D": true, "W": true, "M": true,
}

// Collector fetches price history and serves every analytics operation through the
// response cache, one cache entry per external request.
type Collector struct {
	Fetcher      Fetcher
	Cache        *cache.Cache
	HistoryDays  int
	TTL          time.Duration
	FetchTimeout time.Duration
	Metrics      *metrics.Metrics
	log          *logrus.Entry
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, c *cache.Cache, historyDays int, ttl time.Duration, log *logrus.Entry) *Collector {
	if c == nil {
		c = cache.New(nil)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Collector{
		Fetcher:      fetcher,
		Cache:        c,
		HistoryDays:  historyDays,
		TTL:          ttl,
		FetchTimeout: DefaultFetchTimeout,
		log:          log.WithField("component", "collector"),
	}
}

// detach derives the context for a cached fetch. Other callers may be waiting on
// the same fetch, so it keeps the request's values but not its cancellation.
func (c *Collector) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// NormalizeSymbol upper-cases and trims a user-supplied symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// History fetches the daily series for symbol. An empty result is ErrInsufficientData.
func (c *Collector) History(ctx context.Context, symbol string) (model.PriceSeries, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return model.PriceSeries{}, &analytics.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}

	series, err := c.Fetcher.FetchDailyCloses(ctx, symbol, c.HistoryDays)
	c.observeFetch(err)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch %s history from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	if series.Len() == 0 {
		return model.PriceSeries{}, fmt.Errorf("%s: %w", symbol, analytics.ErrInsufficientData)
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}
	return series, nil
}

// Detail returns history and indicators for symbol.
func (c *Collector) Detail(ctx context.Context, symbol string) (*model.SymbolReport, error) {
	symbol = NormalizeSymbol(symbol)
	key := c.Cache.Key("crypto", symbol)
	return cache.GetOrCompute(ctx, c.Cache, key, c.TTL, func() (*model.SymbolReport, error) {
		fctx, cancel := c.detach(ctx)
		defer cancel()
		series, err := c.History(fctx, symbol)
		if err != nil {
			return nil, err
		}
		ind, err := analytics.GetIndicators(series)
		if err != nil {
			return nil, err
		}
		return &model.SymbolReport{
			Symbol:       series.Symbol,
			CurrentPrice: series.Last(),
			History:      series,
			Indicators:   ind,
		}, nil
	})
}

// Predict returns the full prediction report for symbol over `days`.
func (c *Collector) Predict(ctx context.Context, symbol string, days int) (*model.Prediction, error) {
	if err := analytics.ValidateDays(days); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)
	key := c.Cache.Key("predict", symbol, days)
	p, err := cache.GetOrCompute(ctx, c.Cache, key, c.TTL, func() (*model.Prediction, error) {
		fctx, cancel := c.detach(ctx)
		defer cancel()
		series, err := c.History(fctx, symbol)
		if err != nil {
			return nil, err
		}
		return analytics.Predict(series, days)
	})
	if err != nil {
		return nil, err
	}
	if c.Metrics != nil {
		c.Metrics.SignalsTotal.WithLabelValues(string(p.Verdict.Signal)).Inc()
	}
	return p, nil
}

// Klines returns OHLCV bars. Empty interval and non-positive limit take defaults;
// limit is capped at 1000.
func (c *Collector) Klines(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	symbol = NormalizeSymbol(symbol)
	if interval == "" {
		interval = defaultInterval
	}
	if !validIntervals[interval] {
		return nil, &analytics.ValidationError{Field: "interval", Reason: fmt.Sprintf("unsupported value %q", interval)}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	key := c.Cache.Key("klines", symbol, interval, limit)
	return cache.GetOrCompute(ctx, c.Cache, key, c.TTL, func() ([]model.OHLCV, error) {
		fctx, cancel := c.detach(ctx)
		defer cancel()
		bars, err := c.Fetcher.FetchBars(fctx, symbol, interval, limit)
		c.observeFetch(err)
		if err != nil {
			return nil, fmt.Errorf("fetch %s klines from %s: %w", symbol, c.Fetcher.Name(), err)
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("%s klines: %w", symbol, analytics.ErrInsufficientData)
		}
		return bars, nil
	})
}

// Search finds symbols matching query. An empty query returns no results without
// touching the provider.
func (c *Collector) Search(ctx context.Context, query string) ([]model.SymbolInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SymbolInfo{}, nil
	}
	key := c.Cache.Key("search", strings.ToLower(query))
	return cache.GetOrCompute(ctx, c.Cache, key, c.TTL, func() ([]model.SymbolInfo, error) {
		fctx, cancel := c.detach(ctx)
		defer cancel()
		found, err := c.Fetcher.SearchSymbols(fctx, query)
		c.observeFetch(err)
		if err != nil {
			return nil, fmt.Errorf("search %q on %s: %w", query, c.Fetcher.Name(), err)
		}
		if len(found) > maxSearchResults {
			found = found[:maxSearchResults]
		}
		if found == nil {
			found = []model.SymbolInfo{}
		}
		return found, nil
	})
}

func (c *Collector) observeFetch(err error) {
	if c.Metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
	}
	c.Metrics.ProviderFetchTotal.WithLabelValues(c.Fetcher.Name(), status).Inc()
}
