// Package service implements the butterfly rating workflow.
//
// The Service is stateless: every call re-reads what it needs from the
// injected store.Store, and every mutation goes through a single store
// primitive. Duplicate ratings are prevented by store.AppendUnique on the
// (butterflyid, userid) pair, which checks and appends atomically.
package service

import (
	"go.uber.org/zap"

	"github.com/roach88/butterflies/internal/ids"
	"github.com/roach88/butterflies/internal/metrics"
	"github.com/roach88/butterflies/internal/schema"
	"github.com/roach88/butterflies/internal/store"
)

// Service orchestrates validation, existence checks and record creation.
//
// Thread-safety: all methods are safe for concurrent use as long as the
// store, validator and id generator are.
type Service struct {
	store     store.Store
	validator *schema.Validator
	ids       ids.Generator
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics records rating outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a Service over st.
func New(st store.Store, v *schema.Validator, gen ids.Generator, opts ...Option) *Service {
	s := &Service{
		store:     st,
		validator: v,
		ids:       gen,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("service")
	return s
}

func (s *Service) observeRating(outcome string) {
	if s.metrics != nil {
		s.metrics.RatingOutcome(outcome)
	}
}
