package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds daily closes in chronological order with matching timestamps.
// The pipeline treats it as read-only.
type PriceSeries struct {
	Symbol     string      `json:"symbol"`
	Closes     []float64   `json:"prices"`
	Timestamps []time.Time `json:"timestamps"`
}

// NewPriceSeries builds a series from bars, keeping only the close of each bar.
func NewPriceSeries(symbol string, bars []OHLCV) PriceSeries {
	s := PriceSeries{
		Symbol:     symbol,
		Closes:     make([]float64, len(bars)),
		Timestamps: make([]time.Time, len(bars)),
	}
	for i, b := range bars {
		s.Closes[i] = b.Close
		s.Timestamps[i] = b.Time
	}
	return s
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int { return len(s.Closes) }

// Last returns the most recent close, or 0 for an empty series.
func (s PriceSeries) Last() float64 {
	if len(s.Closes) == 0 {
		return 0
	}
	return s.Closes[len(s.Closes)-1]
}

// Tail returns the last n closes (all of them if the series is shorter).
func (s PriceSeries) Tail(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n >= len(s.Closes) {
		return s.Closes
	}
	return s.Closes[len(s.Closes)-n:]
}

// SymbolInfo describes a tradable pair returned by a provider search.
type SymbolInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Pair string `json:"pair"`
}

// SymbolReport is the detail view of one symbol: its history and indicators.
type SymbolReport struct {
	Symbol       string            `json:"symbol"`
	CurrentPrice float64           `json:"current_price"`
	History      PriceSeries       `json:"history"`
	Indicators   IndicatorSnapshot `json:"indicators"`
}
