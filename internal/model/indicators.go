package model

// IndicatorSnapshot holds the technical indicators computed from one price series.
type IndicatorSnapshot struct {
	RSI           float64 `json:"rsi"`
	MAShort       float64 `json:"ma_7"`
	MAMedium      float64 `json:"ma_25"`
	MALong        float64 `json:"ma_50"`
	Volatility    float64 `json:"volatility"`     // percent, >= 0
	TrendStrength float64 `json:"trend_strength"` // percent, signed
}
