package notifier

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"PriceOracle/internal/model"
)

var signalEmoji = map[model.Signal]string{
	model.SignalStrongBuy:  "🟢🟢",
	model.SignalBuy:        "🟢",
	model.SignalHold:       "⚪",
	model.SignalSell:       "🔴",
	model.SignalStrongSell: "🔴🔴",
}

// FormatPrediction formats a full prediction report into a Telegram message.
func FormatPrediction(p *model.Prediction) string {
	var b strings.Builder
	v := p.Verdict

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %d-day outlook | %s\n\n",
		html.EscapeString(p.Symbol), p.Days, p.AsOf.Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Current price: %s\n", formatPrice(p.CurrentPrice)))
	b.WriteString(fmt.Sprintf("Expected price: %s (%+.2f%%)\n", formatPrice(p.ExpectedPrice), v.PredictedTrend))
	b.WriteString(fmt.Sprintf("Support: %s | Resistance: %s\n\n", formatPrice(v.Support), formatPrice(v.Resistance)))

	b.WriteString(fmt.Sprintf("%s <b>Signal:</b> %s\n", signalEmoji[v.Signal], v.SignalText))
	b.WriteString(fmt.Sprintf("💡 <b>Action:</b> %s\n", v.Action))
	b.WriteString(fmt.Sprintf("🎯 Confidence: %.0f%%\n", v.Confidence))
	b.WriteString(fmt.Sprintf("📐 Model accuracy: %.1f%% (RMSE %.4f)\n\n", p.Metrics.Accuracy, p.Metrics.RMSE))

	b.WriteString(formatIndicatorLines(p.Indicators))
	return b.String()
}

// FormatIndicators formats the indicator snapshot of a symbol.
func FormatIndicators(r *model.SymbolReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s indicators</b>\n\n", html.EscapeString(r.Symbol)))
	b.WriteString(fmt.Sprintf("Price: %s (%d days of history)\n", formatPrice(r.CurrentPrice), r.History.Len()))
	b.WriteString(formatIndicatorLines(r.Indicators))
	return b.String()
}

func formatIndicatorLines(ind model.IndicatorSnapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("RSI(14): %.1f%s\n", ind.RSI, rsiZone(ind.RSI)))
	b.WriteString(fmt.Sprintf("MA7: %s | MA25: %s | MA50: %s\n",
		formatPrice(ind.MAShort), formatPrice(ind.MAMedium), formatPrice(ind.MALong)))
	b.WriteString(fmt.Sprintf("Volatility: %.2f%% | Trend: %+.2f%%\n", ind.Volatility, ind.TrendStrength))
	return b.String()
}

func rsiZone(rsi float64) string {
	switch {
	case rsi >= 70:
		return " (overbought)"
	case rsi <= 30:
		return " (oversold)"
	default:
		return ""
	}
}

// FormatSignalChange announces that a symbol's signal moved since the last refresh.
func FormatSignalChange(from model.Signal, p *model.Prediction) string {
	v := p.Verdict
	return fmt.Sprintf("🔔 <b>%s</b> signal changed: %s → %s %s\nPrice %s, expected %s in %d days (%+.2f%%), confidence %.0f%%",
		html.EscapeString(p.Symbol), from, signalEmoji[v.Signal], v.Signal,
		formatPrice(p.CurrentPrice), formatPrice(p.ExpectedPrice), p.Days, v.PredictedTrend, v.Confidence)
}

// FormatDigest summarizes the latest prediction of every watchlist symbol.
func FormatDigest(preds []*model.Prediction, failed []string, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗞 <b>Daily digest</b> | %s\n\n", at.Format("2006-01-02")))

	if len(preds) == 0 && len(failed) == 0 {
		b.WriteString("Watchlist is empty.")
		return b.String()
	}
	for _, p := range preds {
		v := p.Verdict
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s → %s (%+.2f%%) %s %.0f%%\n",
			signalEmoji[v.Signal], html.EscapeString(p.Symbol),
			formatPrice(p.CurrentPrice), formatPrice(p.ExpectedPrice), v.PredictedTrend, v.Signal, v.Confidence))
	}
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Unavailable: %s", html.EscapeString(strings.Join(failed, ", "))))
	}
	return b.String()
}

// FormatWatchlist lists the configured symbols.
func FormatWatchlist(symbols []string) string {
	if len(symbols) == 0 {
		return "Watchlist is empty."
	}
	return fmt.Sprintf("👀 <b>Watchlist</b>\n%s", html.EscapeString(strings.Join(symbols, ", ")))
}

// FormatError renders a user-facing failure.
func FormatError(err error) string {
	return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
}

// HelpText lists the supported bot commands.
func HelpText() string {
	return "🤖 <b>Price Oracle</b>\n\n" +
		"/signal SYM [days] - forecast and trading signal\n" +
		"/indicators SYM - RSI, moving averages, volatility\n" +
		"/watchlist - tracked symbols\n" +
		"/help - this message"
}

var htmlTag = regexp.MustCompile(`</?[a-z]+>`)

// FormatPlain strips the Telegram HTML markup for terminal output.
func FormatPlain(msg string) string {
	return html.UnescapeString(htmlTag.ReplaceAllString(msg, ""))
}

// formatPrice keeps small-cap prices readable.
func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("$%.2f", p)
	case p >= 1:
		return fmt.Sprintf("$%.4f", p)
	default:
		return fmt.Sprintf("$%.6f", p)
	}
}
