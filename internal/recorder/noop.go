package recorder

import (
	"context"

	"PriceOracle/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPrediction(_ context.Context, _ *model.Prediction) error       { return nil }
func (n *NoopRecorder) UpsertSymbols(_ context.Context, _ []model.SymbolInfo) error         { return nil }
func (n *NoopRecorder) LatestSignals(_ context.Context) (map[string]SignalRecord, error)    { return nil, nil }
func (n *NoopRecorder) Close() error                                                        { return nil }
