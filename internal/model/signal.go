package model

// Signal is the discrete trading signal derived from trend and RSI.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

// Action is the recommended trade, decided independently of Signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// SignalVerdict is the final output of the classifier.
type SignalVerdict struct {
	Signal         Signal  `json:"signal"`
	SignalText     string  `json:"signal_text"`
	Action         Action  `json:"action"`
	Confidence     float64 `json:"confidence"`
	Support        float64 `json:"support"`
	Resistance     float64 `json:"resistance"`
	PredictedTrend float64 `json:"predicted_change"`
}
