package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/butterflies/internal/model"
	"github.com/roach88/butterflies/internal/store"
)

// DefaultButterflies is the butterfly collection written by Seed.
var DefaultButterflies = []model.Butterfly{
	{ID: "GI9_EuH8s1", CommonName: "Zebra Swallowtail", Species: "Protographium marcellus", Article: "https://en.wikipedia.org/wiki/Protographium_marcellus"},
	{ID: "xRKSdjkBt4", CommonName: "Plum Judy", Species: "Abisara echerius", Article: "https://en.wikipedia.org/wiki/Abisara_echerius"},
	{ID: "0MUBKMu07U", CommonName: "Red Pierrot", Species: "Talicada nyseus", Article: "https://en.wikipedia.org/wiki/Talicada_nyseus"},
	{ID: "NLktii5zvK", CommonName: "Texan Crescentspot", Species: "Anthanassa texana", Article: "https://en.wikipedia.org/wiki/Anthanassa_texana"},
	{ID: "SMyaT24g-N", CommonName: "Guava Skipper", Species: "Phocides polybius", Article: "https://en.wikipedia.org/wiki/Phocides_polybius"},
	{ID: "DCenP4kQNQ", CommonName: "Mexican Bluewing", Species: "Myscelia ethusa", Article: "https://en.wikipedia.org/wiki/Myscelia_ethusa"},
}

// DefaultUsers is the user collection written by Seed.
var DefaultUsers = []model.User{
	{ID: "OOWzUaHLsK", Username: "iluvbutterflies"},
	{ID: "sdmU7-wkQX", Username: "flutterby"},
	{ID: "aqekk3t4kw", Username: "metamorphosize_me"},
}

// DefaultRatings is the rating collection written by Seed.
var DefaultRatings = []model.Rating{
	{ID: "cdz4MIeIT", ButterflyID: "NLktii5zvK", RatingKey: "keyNLktii5zvKaqekk3t4kw", UserID: "aqekk3t4kw", Rating: "5"},
	{ID: "CL3_sIdmM", ButterflyID: "NLktii5zvK", RatingKey: "keyNLktii5zvKsdmU7-wkQX", UserID: "sdmU7-wkQX", Rating: "5"},
	{ID: "WISaW0ORv", ButterflyID: "xRKSdjkBt4", RatingKey: "keyxRKSdjkBt4OOWzUaHLsK", UserID: "OOWzUaHLsK", Rating: "4"},
	{ID: "LfG4WuwpS", ButterflyID: "0MUBKMu07U", RatingKey: "key0MUBKMu07UOOWzUaHLsK", UserID: "OOWzUaHLsK", Rating: "1"},
	{ID: "3pH5_O3LA", ButterflyID: "xRKSdjkBt4", RatingKey: "keyxRKSdjkBt4aqekk3t4kw", UserID: "aqekk3t4kw", Rating: "5"},
	{ID: "46EGqFwLU", ButterflyID: "xRKSdjkBt4", RatingKey: "keyxRKSdjkBt4sdmU7-wkQX", UserID: "sdmU7-wkQX", Rating: "0"},
}

// Seed replaces every collection with the default dataset.
func (s *Service) Seed(ctx context.Context) error {
	butterflies := make([]store.Record, len(DefaultButterflies))
	for i, b := range DefaultButterflies {
		butterflies[i] = b.ToRecord()
	}
	users := make([]store.Record, len(DefaultUsers))
	for i, u := range DefaultUsers {
		users[i] = u.ToRecord()
	}
	ratings := make([]store.Record, len(DefaultRatings))
	for i, r := range DefaultRatings {
		ratings[i] = r.ToRecord()
	}

	for _, c := range []struct {
		name    string
		records []store.Record
	}{
		{store.Butterflies, butterflies},
		{store.Users, users},
		{store.Ratings, ratings},
	} {
		if err := s.store.Write(ctx, c.name, c.records); err != nil {
			return NewStoreError("seed "+c.name, err)
		}
	}

	s.logger.Info("store seeded",
		zap.Int("butterflies", len(butterflies)),
		zap.Int("users", len(users)),
		zap.Int("ratings", len(ratings)),
	)
	return nil
}
