package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/butterflies/internal/model"
	"github.com/roach88/butterflies/internal/store"
)

// GetButterfly returns the butterfly with the given id.
func (s *Service) GetButterfly(ctx context.Context, id string) (model.Butterfly, error) {
	rec, ok, err := s.store.Find(ctx, store.Butterflies, model.FieldID, id)
	if err != nil {
		return model.Butterfly{}, NewStoreError("get butterfly", err)
	}
	if !ok {
		return model.Butterfly{}, NewNotFoundError("butterfly", id)
	}
	return model.ButterflyFromRecord(rec), nil
}

// CreateButterfly validates body and stores a new butterfly.
func (s *Service) CreateButterfly(ctx context.Context, body []byte) (model.Butterfly, error) {
	p, err := s.validator.Butterfly(body)
	if err != nil {
		s.logger.Debug("rejected butterfly", zap.Error(err))
		return model.Butterfly{}, NewValidationError(err)
	}

	b := model.Butterfly{
		ID:         s.ids.Generate(),
		CommonName: p.CommonName,
		Species:    p.Species,
		Article:    p.Article,
	}
	if err := s.store.Append(ctx, store.Butterflies, b.ToRecord()); err != nil {
		return model.Butterfly{}, NewStoreError("create butterfly", err)
	}

	s.logger.Info("butterfly created", zap.String("id", b.ID), zap.String("common_name", b.CommonName))
	return b, nil
}
