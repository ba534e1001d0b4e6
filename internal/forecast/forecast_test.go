package forecast

import (
	"math"
	"testing"

	"PriceOracle/internal/model"
)

func linearSeries(from, to float64, n int) []float64 {
	out := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + step*float64(i)
	}
	return out
}

func TestLinear_Ascending(t *testing.T) {
	closes := linearSeries(100, 129, 30)
	fc := Linear(closes, 7)
	if fc.Days() != 7 {
		t.Fatalf("expected 7 predictions, got %d", fc.Days())
	}
	for i, p := range fc.Prices {
		want := 130 + float64(i)
		if math.Abs(p-want) > 1e-6 {
			t.Errorf("day %d: expected %.4f, got %.4f", i+1, want, p)
		}
	}
}

func TestLinear_DecliningRespectsFloor(t *testing.T) {
	closes := linearSeries(200, 100, 90)
	fc := Linear(closes, 7)
	prev := closes[len(closes)-1]
	for i, p := range fc.Prices {
		if p < 50 {
			t.Errorf("day %d: %.4f below floor 50", i+1, p)
		}
		if p >= prev {
			t.Errorf("day %d: expected continued decline, %.4f >= %.4f", i+1, p, prev)
		}
		prev = p
	}

	// a long horizon drives the raw line far below the floor
	long := Linear(closes, 200)
	if got := long.Last(); math.Abs(got-50) > 1e-9 {
		t.Errorf("expected clamp at 50, got %.4f", got)
	}
}

func TestLinear_FloorHoldsForVolatileInput(t *testing.T) {
	inputs := [][]float64{
		{1000, 10},
		{500, 400, 300, 10, 5},
		{1, 2, 1, 2, 100, 1},
	}
	for _, closes := range inputs {
		last := closes[len(closes)-1]
		for _, p := range Linear(closes, 30).Prices {
			if p < last*FloorRatio {
				t.Errorf("input %v: %.4f below floor %.4f", closes, p, last*FloorRatio)
			}
		}
	}
}

func TestLinear_Fallbacks(t *testing.T) {
	fc := Linear([]float64{42}, 5)
	if fc.Days() != 5 {
		t.Fatalf("expected 5 predictions, got %d", fc.Days())
	}
	for _, p := range fc.Prices {
		if p != 42 {
			t.Errorf("expected flat 42, got %.4f", p)
		}
	}

	flat := Linear([]float64{100, 100, 100, 100}, 3)
	for _, p := range flat.Prices {
		if p != 100 {
			t.Errorf("expected 100 for flat input, got %.4f", p)
		}
	}

	nan := Linear([]float64{1, math.NaN(), 3}, 2)
	for _, p := range nan.Prices {
		if p != 3 {
			t.Errorf("expected flat fallback at 3 for NaN input, got %.4f", p)
		}
	}

	if got := Linear(nil, 3); got.Days() != 0 {
		t.Errorf("expected empty forecast for empty series, got %d", got.Days())
	}
}

func TestLinear_ConstantSeriesIsExact(t *testing.T) {
	for _, price := range []float64{0.07, 0.1, 0.3, 1.1, 3.3, 123456.789} {
		closes := make([]float64, 90)
		for i := range closes {
			closes[i] = price
		}
		for i, p := range Linear(closes, 7).Prices {
			if p != price {
				t.Errorf("price %v day %d: expected exactly %v, got %v", price, i+1, price, p)
			}
		}
	}
}

func TestScore(t *testing.T) {
	fc := model.ForecastResult{Prices: []float64{110, 90}}
	m := Score(fc, []float64{1, 2, 3, 100, 100})
	// mape = 10%, rmse = 10
	if math.Abs(m.Accuracy-90) > 1e-9 {
		t.Errorf("expected accuracy 90, got %.6f", m.Accuracy)
	}
	if math.Abs(m.RMSE-10) > 1e-9 {
		t.Errorf("expected rmse 10, got %.6f", m.RMSE)
	}

	perfect := Score(model.ForecastResult{Prices: []float64{5, 6}}, []float64{5, 6})
	if perfect.Accuracy != 100 || perfect.RMSE != 0 {
		t.Errorf("expected perfect score, got %+v", perfect)
	}

	awful := Score(model.ForecastResult{Prices: []float64{1000}}, []float64{1})
	if awful.Accuracy != 0 {
		t.Errorf("expected accuracy clamped at 0, got %.4f", awful.Accuracy)
	}
}

func TestScore_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		forecast []float64
		realized []float64
	}{
		{"empty forecast", nil, []float64{1, 2}},
		{"empty realized", []float64{1}, nil},
		{"realized shorter than forecast", []float64{1, 2, 3}, []float64{1}},
		{"zero realized price", []float64{1, 2}, []float64{0, 2}},
		{"non-finite forecast", []float64{math.Inf(1)}, []float64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Score(model.ForecastResult{Prices: tt.forecast}, tt.realized)
			if m.Accuracy != DefaultAccuracy || m.RMSE != DefaultRMSE {
				t.Errorf("expected defaults, got %+v", m)
			}
		})
	}
}
