package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/butterflies/internal/ids"
	"github.com/roach88/butterflies/internal/model"
	"github.com/roach88/butterflies/internal/store"
)

func TestGetButterfly(t *testing.T) {
	env := createTestEnv(t, ids.NewFixedGenerator())

	b, err := env.svc.GetButterfly(context.Background(), "B1")
	require.NoError(t, err)
	assert.Equal(t, "Zebra Swallowtail", b.CommonName)
	assert.Equal(t, "Protographium marcellus", b.Species)

	_, err = env.svc.GetButterfly(context.Background(), "B2")
	assert.True(t, IsNotFound(err))
}

func TestCreateButterfly(t *testing.T) {
	env := createTestEnv(t, ids.NewFixedGenerator("B2"))
	ctx := context.Background()

	b, err := env.svc.CreateButterfly(ctx, []byte(`{"commonName":"Plum Judy","species":"Abisara echerius","article":"https://en.wikipedia.org/wiki/Abisara_echerius"}`))
	require.NoError(t, err)
	assert.Equal(t, model.Butterfly{
		ID:         "B2",
		CommonName: "Plum Judy",
		Species:    "Abisara echerius",
		Article:    "https://en.wikipedia.org/wiki/Abisara_echerius",
	}, b)

	got, err := env.svc.GetButterfly(ctx, "B2")
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestCreateButterfly_Invalid(t *testing.T) {
	env := createTestEnv(t, ids.NewFixedGenerator())

	for _, body := range []string{
		`{"commonName":"Plum Judy","species":"Abisara echerius"}`,
		`{"commonName":1,"species":"x","article":"y"}`,
		`not json`,
	} {
		_, err := env.svc.CreateButterfly(context.Background(), []byte(body))
		assert.True(t, IsValidation(err), body)
	}

	records, err := env.store.Read(context.Background(), store.Butterflies)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGetUser(t *testing.T) {
	env := createTestEnv(t, ids.NewFixedGenerator())

	u, err := env.svc.GetUser(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, model.User{ID: "U1", Username: "iluvbutterflies"}, u)

	_, err = env.svc.GetUser(context.Background(), "U2")
	require.Error(t, err)
	assert.Equal(t, "No user with the id of U2", err.(*Error).Message)
}

func TestCreateUser(t *testing.T) {
	env := createTestEnv(t, ids.NewFixedGenerator("U2"))
	ctx := context.Background()

	u, err := env.svc.CreateUser(ctx, []byte(`{"username":"flutterby"}`))
	require.NoError(t, err)
	assert.Equal(t, model.User{ID: "U2", Username: "flutterby"}, u)

	_, err = env.svc.CreateUser(ctx, []byte(`{"name":"flutterby"}`))
	assert.True(t, IsValidation(err))
}

func TestSeed(t *testing.T) {
	env := createTestEnv(t, ids.NewFixedGenerator())
	ctx := context.Background()

	require.NoError(t, env.svc.Seed(ctx))

	butterflies, err := env.store.Read(ctx, store.Butterflies)
	require.NoError(t, err)
	assert.Len(t, butterflies, len(DefaultButterflies))

	_, err = env.svc.GetButterfly(ctx, "B1")
	assert.True(t, IsNotFound(err), "seed replaces existing records")

	got, err := env.svc.RatedButterflies(ctx, "OOWzUaHLsK")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Red Pierrot", got[0].CommonName)
	assert.Equal(t, "Plum Judy", got[1].CommonName)
}

func TestDefaultRatings_Consistent(t *testing.T) {
	butterflies := make(map[string]bool)
	for _, b := range DefaultButterflies {
		butterflies[b.ID] = true
	}
	users := make(map[string]bool)
	for _, u := range DefaultUsers {
		users[u.ID] = true
	}
	pairs := make(map[[2]string]bool)
	for _, r := range DefaultRatings {
		assert.True(t, butterflies[r.ButterflyID], r.ID)
		assert.True(t, users[r.UserID], r.ID)
		assert.Equal(t, model.RatingKey(r.ButterflyID, r.UserID), r.RatingKey)
		_, err := model.ParseRating(r.Rating)
		assert.NoError(t, err)

		pair := [2]string{r.ButterflyID, r.UserID}
		assert.False(t, pairs[pair], "duplicate pair %v", pair)
		pairs[pair] = true
	}
}

func TestErrorHelpers(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), NewConflictError("B1", "U1"))
	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))

	se := NewStoreError("op", store.ErrClosed)
	assert.ErrorIs(t, se, store.ErrClosed)
	assert.Equal(t, MsgStoreFailure, se.Message)
	assert.Contains(t, se.Error(), "STORE")
}
