package recorder

import (
	"context"

	"PriceOracle/internal/model"
)

// SignalRecord is the most recent persisted verdict for one symbol.
type SignalRecord struct {
	Symbol     string
	Signal     model.Signal
	Price      float64
	Confidence float64
	RecordedAt int64
}

// Recorder persists prediction history and the known symbol catalogue.
type Recorder interface {
	RecordPrediction(ctx context.Context, p *model.Prediction) error
	UpsertSymbols(ctx context.Context, symbols []model.SymbolInfo) error
	LatestSignals(ctx context.Context) (map[string]SignalRecord, error)
	Close() error
}
