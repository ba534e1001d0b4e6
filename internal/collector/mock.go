package collector

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"PriceOracle/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Closes  []float64 // overrides the generated series when set
	Symbols []model.SymbolInfo
	Err     error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many fetches have been served.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func (m *MockFetcher) FetchDailyCloses(_ context.Context, symbol string, days int) (model.PriceSeries, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	if m.Closes != nil {
		closes := m.Closes
		if len(closes) > days {
			closes = closes[len(closes)-days:]
		}
		return model.NewPriceSeries(strings.ToUpper(symbol), barsFromCloses(closes)), nil
	}
	return model.NewPriceSeries(strings.ToUpper(symbol), generateMockBars(m.Price, days)), nil
}

func (m *MockFetcher) FetchBars(_ context.Context, _ string, _ string, limit int) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Closes != nil {
		return barsFromCloses(m.Closes), nil
	}
	return generateMockBars(m.Price, limit), nil
}

func (m *MockFetcher) SearchSymbols(_ context.Context, query string) ([]model.SymbolInfo, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	q := strings.ToLower(query)
	var out []model.SymbolInfo
	for _, s := range m.Symbols {
		if strings.Contains(strings.ToLower(s.Code), q) || strings.Contains(strings.ToLower(s.Pair), q) {
			out = append(out, s)
		}
	}
	return out, nil
}

var mockEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func barsFromCloses(closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:  mockEpoch.AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return bars
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   mockEpoch.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
