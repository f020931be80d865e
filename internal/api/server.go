// Package api serves palette extraction over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/codegangsta/negroni"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/swatch/internal/config"
)

// Routes served by the API.
const (
	RoutePalette         = "/single-pallet"
	RouteRenderedPalette = "/single-rendered-pallet"
	RouteMetrics         = "/metrics"
	RouteHealth          = "/healthz"
	RouteVersion         = "/version"
)

// Server handles palette extraction requests.
type Server struct {
	config  config.ServerConfig
	logger  hclog.Logger
	handler http.Handler
}

// NewServer validates cfg and builds the request handler. A nil logger
// discards log output.
func NewServer(cfg config.ServerConfig, logger hclog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	s := &Server{
		config: cfg,
		logger: logger.Named("api"),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.instrument)

	router.HandleFunc(RoutePalette, s.handlePalette).Methods(http.MethodPost)
	router.HandleFunc(RouteRenderedPalette, s.handleRenderedPalette).Methods(http.MethodPost)
	router.Handle(RouteMetrics, promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc(RouteHealth, s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc(RouteVersion, s.handleVersion).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no route for %s", r.URL.Path))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
	})

	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	recovery.Logger = s.logger.StandardLogger(&hclog.StandardLoggerOptions{ForceLevel: hclog.Error})

	return negroni.New(
		recovery,
		negroni.HandlerFunc(s.logRequest),
		negroni.Wrap(router),
	)
}

// ListenAndServe serves until ctx is cancelled, then shuts down and waits up
// to ShutdownGrace for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.WriteTimeout,
		ErrorLog:          s.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "grace", s.config.ShutdownGrace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
