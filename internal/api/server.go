// Package api serves the butterfly rating service over HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/butterflies/internal/metrics"
	"github.com/roach88/butterflies/internal/service"
)

// MaxBodyBytes bounds every request body.
const MaxBodyBytes = 1 << 20

// Server routes HTTP requests to a service.Service.
type Server struct {
	svc     *service.Service
	router  *mux.Router
	handler http.Handler
	server  *http.Server
	logger  *zap.Logger
	metrics *metrics.Metrics

	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics exposes m on /metrics and records every request on it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTimeouts sets the read, write and graceful shutdown timeouts.
// Zero values keep the defaults.
func WithTimeouts(read, write, shutdown time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
		if shutdown > 0 {
			s.shutdownTimeout = shutdown
		}
	}
}

// NewServer builds the router for svc.
func NewServer(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		svc:             svc,
		router:          mux.NewRouter(),
		logger:          zap.NewNop(),
		readTimeout:     10 * time.Second,
		writeTimeout:    10 * time.Second,
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("api")

	r := s.router
	r.HandleFunc("/", s.getRoot).Methods("GET")
	r.HandleFunc("/butterflies", s.postButterfly).Methods("POST")
	r.HandleFunc("/butterflies/getRating/{userId}", s.getRatedButterflies).Methods("GET")
	r.HandleFunc("/butterflies/{id}", s.getButterfly).Methods("GET")
	r.HandleFunc("/butterflies/{butterflyId}/rate", s.postRating).Methods("POST")
	r.HandleFunc("/butterflyrating", s.deleteRatings).Methods("DELETE")
	r.HandleFunc("/users", s.postUser).Methods("POST")
	r.HandleFunc("/users/{id}", s.getUser).Methods("GET")
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	s.handler = s.instrument(r)
	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
