package model

import (
	"reflect"
	"testing"
)

func TestPriceSeriesTail(t *testing.T) {
	s := PriceSeries{Closes: []float64{1, 2, 3, 4, 5}}
	tests := []struct {
		n    int
		want []float64
	}{
		{2, []float64{4, 5}},
		{5, []float64{1, 2, 3, 4, 5}},
		{9, []float64{1, 2, 3, 4, 5}},
		{0, nil},
		{-1, nil},
	}
	for _, tt := range tests {
		if got := s.Tail(tt.n); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tail(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
