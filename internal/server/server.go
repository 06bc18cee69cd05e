package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"energy-service/internal/report"
	"energy-service/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const version = "1.0.0"

type Options struct {
	Service         *service.Service
	Charts          *report.ChartGenerator
	Logger          *zap.Logger
	CORSOrigins     []string // empty allows any origin
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	router  *mux.Router
	handler http.Handler
	svc     *service.Service
	charts  *report.ChartGenerator
	logger  *zap.Logger
	origins map[string]struct{}
	opts    Options
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Charts == nil {
		opts.Charts = report.NewChartGenerator()
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		router: mux.NewRouter(),
		svc:    opts.Service,
		charts: opts.Charts,
		logger: opts.Logger.Named("http"),
		opts:   opts,
	}
	if len(opts.CORSOrigins) > 0 {
		s.origins = make(map[string]struct{}, len(opts.CORSOrigins))
		for _, o := range opts.CORSOrigins {
			s.origins[o] = struct{}{}
		}
	}

	s.setupRoutes()
	s.handler = s.withRequestID(s.withCORS(s.router))
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.instrument)

	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.registerHandler).Methods("POST")
	api.HandleFunc("/login", s.loginHandler).Methods("POST")
	api.HandleFunc("/submit_data", s.submitHandler).Methods("POST")
	api.HandleFunc("/dashboard_data", s.dashboardHandler).Methods("GET")
	api.HandleFunc("/dashboard_chart", s.dashboardChartHandler).Methods("GET")
	api.HandleFunc("/results/{id:[0-9]+}", s.resultHandler).Methods("GET")
	api.HandleFunc("/results", s.recentResultsHandler).Methods("GET")

	s.router.HandleFunc("/analytics/current", s.getAnalyticsHandler).Methods("GET")
	s.router.HandleFunc("/analytics/anomalies", s.getAnomaliesHandler).Methods("GET")
	s.router.Handle("/metrics/prometheus", promhttp.Handler())
}

// Handler returns the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info("Server is shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Server is ready to handle requests", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	}

	if err := <-done; err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
