package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/roach88/butterflies/internal/model"
	"github.com/roach88/butterflies/internal/store"
)

// Rating submission outcomes, used as metric labels.
const (
	OutcomeCreated   = "created"
	OutcomeInvalid   = "invalid"
	OutcomeNotFound  = "not_found"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// SubmitRating records userid's rating of butterflyID.
//
// Steps, each short-circuiting on failure:
//  1. body must match #RatingRequest (shape and the "0".."5" domain)
//  2. the butterfly must exist
//  3. the user must exist
//  4. no rating may exist for (butterflyID, userid); checked and appended
//     atomically by the store
//
// Every step before the append is read-only.
func (s *Service) SubmitRating(ctx context.Context, butterflyID string, body []byte) (model.Rating, error) {
	p, err := s.validator.Rating(body)
	if err != nil {
		s.observeRating(OutcomeInvalid)
		s.logger.Debug("rejected rating", zap.String("butterfly_id", butterflyID), zap.Error(err))
		return model.Rating{}, NewValidationError(err)
	}

	if _, ok, err := s.store.Find(ctx, store.Butterflies, model.FieldID, butterflyID); err != nil {
		s.observeRating(OutcomeError)
		return model.Rating{}, NewStoreError("rate: find butterfly", err)
	} else if !ok {
		s.observeRating(OutcomeNotFound)
		return model.Rating{}, NewNotFoundError("butterfly", butterflyID)
	}

	if _, ok, err := s.store.Find(ctx, store.Users, model.FieldID, p.UserID); err != nil {
		s.observeRating(OutcomeError)
		return model.Rating{}, NewStoreError("rate: find user", err)
	} else if !ok {
		s.observeRating(OutcomeNotFound)
		return model.Rating{}, NewNotFoundError("user", p.UserID)
	}

	r := model.Rating{
		ID:          s.ids.Generate(),
		ButterflyID: butterflyID,
		RatingKey:   model.RatingKey(butterflyID, p.UserID),
		UserID:      p.UserID,
		Rating:      p.Rating,
	}
	err = s.store.AppendUnique(ctx, store.Ratings, r.ToRecord(), model.FieldButterflyID, model.FieldUserID)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		s.observeRating(OutcomeDuplicate)
		return model.Rating{}, NewConflictError(butterflyID, p.UserID)
	case err != nil:
		s.observeRating(OutcomeError)
		return model.Rating{}, NewStoreError("rate: append", err)
	}

	s.observeRating(OutcomeCreated)
	s.logger.Info("rating created",
		zap.String("id", r.ID),
		zap.String("butterfly_id", r.ButterflyID),
		zap.String("user_id", r.UserID),
		zap.String("rating", r.Rating),
	)
	return r, nil
}

// RatedButterflies returns the butterflies userID has rated, ordered by the
// user's rating ascending. Ties keep the order in which ratings were stored.
// Ratings that reference a butterfly which no longer exists are skipped.
// A user with no ratings gets an empty, non-nil slice.
func (s *Service) RatedButterflies(ctx context.Context, userID string) ([]model.Butterfly, error) {
	ratings, err := s.store.Filter(ctx, store.Ratings, model.FieldUserID, userID)
	if err != nil {
		return nil, NewStoreError("rated butterflies: filter ratings", err)
	}
	store.SortBy(ratings, model.FieldRating, model.LessRating)

	butterflies := make([]model.Butterfly, 0, len(ratings))
	for _, r := range ratings {
		butterflyID := r[model.FieldButterflyID]
		rec, ok, err := s.store.Find(ctx, store.Butterflies, model.FieldID, butterflyID)
		if err != nil {
			return nil, NewStoreError("rated butterflies: find butterfly", err)
		}
		if !ok {
			s.logger.Warn("rating references missing butterfly",
				zap.String("rating_id", r[model.FieldID]),
				zap.String("butterfly_id", butterflyID),
			)
			continue
		}
		butterflies = append(butterflies, model.ButterflyFromRecord(rec))
	}
	return butterflies, nil
}

// ClearRatings removes every rating. Clearing an empty collection succeeds.
func (s *Service) ClearRatings(ctx context.Context) error {
	if err := s.store.RemoveAll(ctx, store.Ratings); err != nil {
		return NewStoreError("clear ratings", err)
	}
	s.logger.Info("ratings cleared")
	return nil
}
