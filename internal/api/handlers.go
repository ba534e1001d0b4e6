package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"PriceOracle/internal/analytics"
	"PriceOracle/internal/model"
)

var features = []string{"search", "ticker", "klines", "indicators", "predictions"}

// response is the JSON envelope of every /api endpoint except health.
type response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Field     string `json:"field,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("encode response")
	}
}

func (s *Server) ok(w http.ResponseWriter, data any, count int) {
	resp := response{Success: true, Data: data, Timestamp: s.now().UTC().Format(time.RFC3339)}
	if count >= 0 {
		resp.Count = &count
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// fail maps analytics errors to 400 and everything upstream to 502.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := response{Error: err.Error(), Timestamp: s.now().UTC().Format(time.RFC3339)}
	var verr *analytics.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}
	entry := s.log.WithError(err).WithField("request_id", RequestID(r.Context()))
	if status >= 500 {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	s.writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analytics.ErrInvalidInput), errors.Is(err, analytics.ErrInsufficientData):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, response{Error: "Not found", Timestamp: s.now().UTC().Format(time.RFC3339)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(s.opts.HealthChecks))
	for name, check := range s.opts.HealthChecks {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := check(ctx)
		cancel()
		if err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	s.writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"provider":  s.opts.Provider,
		"features":  features,
		"checks":    checks,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	found, err := s.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.recorder.UpsertSymbols(r.Context(), found); err != nil {
		s.log.WithError(err).Warn("persist search results")
	}
	s.ok(w, found, len(found))
}

func (s *Server) handleWatchlist(w http.ResponseWriter, _ *http.Request) {
	list := make([]model.SymbolInfo, len(s.opts.Watchlist))
	for i, sym := range s.opts.Watchlist {
		list[i] = model.SymbolInfo{Code: sym, Name: sym, Pair: sym + "USDT"}
	}
	s.ok(w, list, len(list))
}

func (s *Server) handleCrypto(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Detail(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, report, -1)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	days, err := s.predictDays(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.svc.Predict(r.Context(), mux.Vars(r)["symbol"], days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, p, -1)
}

// predictDays reads days from the query string, or from a JSON body on POST.
func (s *Server) predictDays(r *http.Request) (int, error) {
	if v := r.URL.Query().Get("days"); v != "" {
		return parseIntParam("days", v)
	}
	if r.Method == http.MethodPost && r.Body != nil {
		var body struct {
			Days *int `json:"days"`
		}
		err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body)
		switch {
		case errors.Is(err, io.EOF):
		case err != nil:
			return 0, &analytics.ValidationError{Field: "body", Reason: "malformed JSON"}
		case body.Days != nil:
			return *body.Days, nil
		}
	}
	return s.opts.DefaultDays, nil
}

func (s *Server) handleKlines(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := parseIntParam("limit", v)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		limit = n
	}
	bars, err := s.svc.Klines(r.Context(), mux.Vars(r)["symbol"], strings.ToUpper(q.Get("interval")), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, bars, len(bars))
}

func parseIntParam(field, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &analytics.ValidationError{Field: field, Reason: fmt.Sprintf("not an integer: %q", v)}
	}
	return n, nil
}
