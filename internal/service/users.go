package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/butterflies/internal/model"
	"github.com/roach88/butterflies/internal/store"
)

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	rec, ok, err := s.store.Find(ctx, store.Users, model.FieldID, id)
	if err != nil {
		return model.User{}, NewStoreError("get user", err)
	}
	if !ok {
		return model.User{}, NewNotFoundError("user", id)
	}
	return model.UserFromRecord(rec), nil
}

// CreateUser validates body and stores a new user.
func (s *Service) CreateUser(ctx context.Context, body []byte) (model.User, error) {
	p, err := s.validator.User(body)
	if err != nil {
		s.logger.Debug("rejected user", zap.Error(err))
		return model.User{}, NewValidationError(err)
	}

	u := model.User{ID: s.ids.Generate(), Username: p.Username}
	if err := s.store.Append(ctx, store.Users, u.ToRecord()); err != nil {
		return model.User{}, NewStoreError("create user", err)
	}

	s.logger.Info("user created", zap.String("id", u.ID))
	return u, nil
}
