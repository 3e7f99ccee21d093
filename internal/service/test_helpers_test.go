package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/butterflies/internal/ids"
	"github.com/roach88/butterflies/internal/metrics"
	"github.com/roach88/butterflies/internal/model"
	"github.com/roach88/butterflies/internal/schema"
	"github.com/roach88/butterflies/internal/store"
)

// testEnv bundles a service with direct access to its store.
type testEnv struct {
	svc     *Service
	store   store.Store
	metrics *metrics.Metrics
}

// createTestEnv creates a service over a fresh JSON store holding
// Butterfly B1 and User U1. Generated ids come from gen.
func createTestEnv(t *testing.T, gen ids.Generator) *testEnv {
	t.Helper()
	st, err := store.OpenJSONFile(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.Append(ctx, store.Butterflies, model.Butterfly{
		ID: "B1", CommonName: "Zebra Swallowtail", Species: "Protographium marcellus",
		Article: "https://en.wikipedia.org/wiki/Protographium_marcellus",
	}.ToRecord()))
	require.NoError(t, st.Append(ctx, store.Users, model.User{ID: "U1", Username: "iluvbutterflies"}.ToRecord()))

	v, err := schema.New()
	require.NoError(t, err)

	m := metrics.New()
	return &testEnv{
		svc:     New(st, v, gen, WithMetrics(m)),
		store:   st,
		metrics: m,
	}
}

func (e *testEnv) ratingCount(t *testing.T) int {
	t.Helper()
	records, err := e.store.Read(context.Background(), store.Ratings)
	require.NoError(t, err)
	return len(records)
}

func (e *testEnv) addButterfly(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, e.store.Append(context.Background(), store.Butterflies,
		model.Butterfly{ID: id, CommonName: name}.ToRecord()))
}

func ratingBody(userID, rating string) []byte {
	return []byte(`{"userid":"` + userID + `","rating":"` + rating + `"}`)
}
