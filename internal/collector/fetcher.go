package collector

import (
	"context"

	"PriceOracle/internal/model"
)

// Fetcher is a price-history provider.
type Fetcher interface {
	// FetchDailyCloses returns up to `days` daily closes in chronological order.
	FetchDailyCloses(ctx context.Context, symbol string, days int) (model.PriceSeries, error)
	// FetchBars returns up to `limit` bars at the given interval ("1", "5", "15", "30", "60", "240", "D", "W").
	FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error)
	// SearchSymbols finds tradable symbols matching query.
	SearchSymbols(ctx context.Context, query string) ([]model.SymbolInfo, error)
	Name() string
}
