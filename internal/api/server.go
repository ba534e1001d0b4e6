package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"PriceOracle/internal/metrics"
	"PriceOracle/internal/model"
	"PriceOracle/internal/recorder"
)

// Service is the analytics surface the API exposes, normally *collector.Collector.
type Service interface {
	Predict(ctx context.Context, symbol string, days int) (*model.Prediction, error)
	Detail(ctx context.Context, symbol string) (*model.SymbolReport, error)
	Klines(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error)
	Search(ctx context.Context, query string) ([]model.SymbolInfo, error)
}

// Options configures the server.
type Options struct {
	Addr        string
	Provider    string
	Watchlist   []string
	DefaultDays int
	CORSOrigins []string

	// HealthChecks are probed by /api/health, e.g. "redis" -> RedisStore.Health.
	HealthChecks map[string]func(context.Context) error
}

// Server represents the HTTP API server.
type Server struct {
	opts       Options
	svc        Service
	recorder   recorder.Recorder
	metrics    *metrics.Metrics
	log        *logrus.Entry
	router     *mux.Router
	httpServer *http.Server
	now        func() time.Time
}

// NewServer creates a new API server. m may be nil to disable /metrics.
func NewServer(svc Service, rec recorder.Recorder, m *metrics.Metrics, opts Options, log *logrus.Entry) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.DefaultDays == 0 {
		opts.DefaultDays = 7
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{
		opts:     opts,
		svc:      svc,
		recorder: rec,
		metrics:  m,
		log:      log.WithField("component", "api"),
		now:      time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/cryptos/all", s.handleWatchlist).Methods(http.MethodGet)
	api.HandleFunc("/crypto/{symbol}", s.handleCrypto).Methods(http.MethodGet)
	api.HandleFunc("/predict/{symbol}", s.handlePredict).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/klines/{symbol}", s.handleKlines).Methods(http.MethodGet)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	h := handlers.CORS(
		handlers.AllowedOrigins(s.opts.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
	)(s.router)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(s.log), handlers.PrintRecoveryStack(true))(h)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.log.WithField("address", s.opts.Addr).Info("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info("stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}
