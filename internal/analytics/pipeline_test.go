package analytics

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"PriceOracle/internal/model"
)

var day0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func series(closes ...float64) model.PriceSeries {
	ts := make([]time.Time, len(closes))
	for i := range ts {
		ts[i] = day0.AddDate(0, 0, i)
	}
	return model.PriceSeries{Symbol: "BTCUSDT", Closes: closes, Timestamps: ts}
}

func ramp(from, to float64, n int) model.PriceSeries {
	closes := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range closes {
		closes[i] = from + step*float64(i)
	}
	return series(closes...)
}

func repeat(price float64, n int) model.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return series(closes...)
}

// Scenario A: +1 per day from 100 to 129.
func TestScenario_Ascending(t *testing.T) {
	s := ramp(100, 129, 30)

	ind, err := GetIndicators(s)
	if err != nil {
		t.Fatalf("GetIndicators: %v", err)
	}
	if math.Abs(ind.TrendStrength-29) > 1e-9 {
		t.Errorf("expected trend strength 29%%, got %.4f", ind.TrendStrength)
	}
	// zero average loss is deliberately normalized to 50, not 100
	if ind.RSI != 50 {
		t.Errorf("expected RSI 50 for an all-gain series, got %.4f", ind.RSI)
	}

	v, err := GetSignal(s, 7)
	if err != nil {
		t.Fatalf("GetSignal: %v", err)
	}
	if v.Signal != model.SignalBuy && v.Signal != model.SignalStrongBuy {
		t.Errorf("expected BUY or STRONG_BUY, got %s", v.Signal)
	}
	if v.Support != 110 || v.Resistance != 129 {
		t.Errorf("expected 110/129, got %.2f/%.2f", v.Support, v.Resistance)
	}
}

// Scenario B: 90 flat points.
func TestScenario_Flat(t *testing.T) {
	s := repeat(100, 90)

	ind, err := GetIndicators(s)
	if err != nil {
		t.Fatalf("GetIndicators: %v", err)
	}
	if ind.RSI != 50 || ind.Volatility != 0 || ind.TrendStrength != 0 {
		t.Errorf("unexpected indicators %+v", ind)
	}

	fc, err := GetForecast(s, 7)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	for _, p := range fc.Prices {
		if p != 100 {
			t.Errorf("expected flat forecast at 100, got %.4f", p)
		}
	}

	v, err := GetSignal(s, 7)
	if err != nil {
		t.Fatalf("GetSignal: %v", err)
	}
	if v.Signal != model.SignalHold || v.Confidence != 15 {
		t.Errorf("expected HOLD at confidence 15, got %s at %.2f", v.Signal, v.Confidence)
	}
}

func TestScenario_FlatAtFractionalPrices(t *testing.T) {
	for _, price := range []float64{0.1, 0.3, 1.1} {
		v, err := GetSignal(repeat(price, 90), 7)
		if err != nil {
			t.Fatalf("GetSignal(%v): %v", price, err)
		}
		if v.Action != model.ActionHold || v.Signal != model.SignalHold {
			t.Errorf("price %v: expected HOLD/HOLD, got %s/%s", price, v.Action, v.Signal)
		}
	}
}

// Scenario C: linear decline from 200 to 100 over 90 points.
func TestScenario_Declining(t *testing.T) {
	s := ramp(200, 100, 90)

	fc, err := GetForecast(s, 7)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	prev := s.Last()
	for i, p := range fc.Prices {
		if p < 50 {
			t.Errorf("day %d below floor: %.4f", i+1, p)
		}
		if p >= prev {
			t.Errorf("day %d: expected decline, got %.4f after %.4f", i+1, p, prev)
		}
		prev = p
	}

	v, err := GetSignal(s, 7)
	if err != nil {
		t.Fatalf("GetSignal: %v", err)
	}
	if v.PredictedTrend >= -3 {
		t.Fatalf("expected trend below -3%%, got %.4f", v.PredictedTrend)
	}
	// a monotone decline has RSI 0, so the SELL rows (RSI > 30) do not apply
	if v.Signal != model.SignalHold {
		t.Errorf("expected default HOLD for oversold decline, got %s", v.Signal)
	}
	if v.Action != model.ActionSell {
		t.Errorf("expected action SELL, got %s", v.Action)
	}
}

func TestScenario_DecliningWithBounces(t *testing.T) {
	// net -1 per two days with rebounds keeps RSI above 30
	closes := make([]float64, 0, 60)
	p := 200.0
	for i := 0; i < 30; i++ {
		p -= 2
		closes = append(closes, p)
		p += 1
		closes = append(closes, p)
	}
	v, err := GetSignal(series(closes...), 30)
	if err != nil {
		t.Fatalf("GetSignal: %v", err)
	}
	if v.Signal != model.SignalSell {
		t.Errorf("expected SELL, got %s (trend %.2f)", v.Signal, v.PredictedTrend)
	}
}

// Scenario D: empty series.
func TestScenario_Empty(t *testing.T) {
	ind, err := GetIndicators(series())
	if err != nil {
		t.Fatalf("expected defaults without error, got %v", err)
	}
	if ind.RSI != 50 || ind.Volatility != 0 {
		t.Errorf("unexpected defaults %+v", ind)
	}

	if _, err := GetForecast(series(), 7); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("GetForecast: expected ErrInsufficientData, got %v", err)
	}
	if _, err := GetSignal(series(), 7); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("GetSignal: expected ErrInsufficientData, got %v", err)
	}
	if _, err := Predict(series(), 7); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Predict: expected ErrInsufficientData, got %v", err)
	}
}

func TestForecast_SinglePointIsFlat(t *testing.T) {
	fc, err := GetForecast(series(250), 4)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if len(fc.Prices) != 4 {
		t.Fatalf("expected 4 predictions, got %d", len(fc.Prices))
	}
	for _, p := range fc.Prices {
		if p != 250 {
			t.Errorf("expected 250, got %.4f", p)
		}
	}
}

func TestInvalidInput(t *testing.T) {
	mismatched := series(1, 2, 3)
	mismatched.Timestamps = mismatched.Timestamps[:2]

	unordered := series(1, 2, 3)
	unordered.Timestamps[2] = unordered.Timestamps[0]

	tests := []struct {
		name  string
		s     model.PriceSeries
		days  int
		field string
	}{
		{"zero price", series(100, 0, 101), 7, "price"},
		{"negative price", series(-1), 7, "price"},
		{"nan price", series(100, math.NaN()), 7, "price"},
		{"mismatched lengths", mismatched, 7, "series"},
		{"unordered timestamps", unordered, 7, "timestamps"},
		{"zero days", series(100, 101), 0, "days"},
		{"negative days", series(100, 101), -2, "days"},
		{"too many days", series(100, 101), MaxForecastDays + 1, "days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetSignal(tt.s, tt.days)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected violation on %q, got %v", tt.field, err)
			}
		})
	}

	if _, err := GetIndicators(series(100, -5)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("GetIndicators: expected ErrInvalidInput, got %v", err)
	}
	if _, err := GetAccuracy(model.ForecastResult{Prices: []float64{1}}, []float64{math.Inf(1)}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("GetAccuracy: expected ErrInvalidInput, got %v", err)
	}
}

func TestPredict_Report(t *testing.T) {
	s := ramp(100, 129, 30)
	p, err := Predict(s, 7)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if p.Symbol != "BTCUSDT" || p.Days != 7 || p.CurrentPrice != 129 {
		t.Errorf("unexpected header %+v", p)
	}
	if p.ExpectedPrice != p.Forecast.Last() {
		t.Errorf("expected price %.4f differs from forecast tail %.4f", p.ExpectedPrice, p.Forecast.Last())
	}
	if !p.AsOf.Equal(s.Timestamps[len(s.Timestamps)-1]) {
		t.Errorf("unexpected as-of %v", p.AsOf)
	}
	if p.Metrics.Accuracy < 0 || p.Metrics.Accuracy > 100 || p.Metrics.RMSE < 0 {
		t.Errorf("metrics out of range: %+v", p.Metrics)
	}
}

func TestGetAccuracy(t *testing.T) {
	m, err := GetAccuracy(model.ForecastResult{Prices: []float64{110}}, []float64{100})
	if err != nil {
		t.Fatalf("GetAccuracy: %v", err)
	}
	if math.Abs(m.Accuracy-90) > 1e-9 || math.Abs(m.RMSE-10) > 1e-9 {
		t.Errorf("unexpected metrics %+v", m)
	}

	m, err = GetAccuracy(model.ForecastResult{}, nil)
	if err != nil {
		t.Fatalf("GetAccuracy: %v", err)
	}
	if m.Accuracy != 85 || m.RMSE != 0 {
		t.Errorf("expected defaults, got %+v", m)
	}
}

func TestGetAccuracy_RejectsNonPositiveRealized(t *testing.T) {
	fc := model.ForecastResult{Prices: []float64{100, 101}}
	for _, realized := range [][]float64{{-50, 100}, {100, 0}, {-1e-9}} {
		_, err := GetAccuracy(fc, realized)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("realized %v: expected ErrInvalidInput, got %v", realized, err)
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "realized" {
			t.Errorf("realized %v: expected violation on realized, got %v", realized, err)
		}
	}
}

func TestPipeline_ConcurrentCallsAgree(t *testing.T) {
	s := ramp(300, 250, 60)
	want, err := GetSignal(s, 14)
	if err != nil {
		t.Fatalf("GetSignal: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]model.SignalVerdict, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = GetSignal(s, 14)
		}(i)
	}
	wg.Wait()
	for i, got := range results {
		if got != want {
			t.Errorf("goroutine %d: got %+v, want %+v", i, got, want)
		}
	}
}
