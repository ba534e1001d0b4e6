package scheduler

import (
	"context"
	"strconv"
	"strings"

	"PriceOracle/internal/notifier"
)

// HandleCommand processes a bot command and returns the HTML reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	// "/signal@OracleBot" in group chats
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch cmd {
	case "/signal", "/predict":
		if len(args) == 0 {
			return "Usage: /signal SYM [days]"
		}
		days := s.Days
		if len(args) > 1 {
			d, err := strconv.Atoi(args[1])
			if err != nil || d < 1 || (s.MaxDays > 0 && d > s.MaxDays) {
				return "Days must be a whole number between 1 and " + strconv.Itoa(s.MaxDays) + "."
			}
			days = d
		}
		p, err := s.Analyzer.Predict(ctx, args[0], days)
		if err != nil {
			return notifier.FormatError(err)
		}
		return notifier.FormatPrediction(p)
	case "/indicators":
		if len(args) == 0 {
			return "Usage: /indicators SYM"
		}
		r, err := s.Analyzer.Detail(ctx, args[0])
		if err != nil {
			return notifier.FormatError(err)
		}
		return notifier.FormatIndicators(r)
	case "/watchlist":
		return notifier.FormatWatchlist(s.Watchlist)
	default:
		return notifier.HelpText()
	}
}
