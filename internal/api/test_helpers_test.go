package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/butterflies/internal/ids"
	"github.com/roach88/butterflies/internal/metrics"
	"github.com/roach88/butterflies/internal/model"
	"github.com/roach88/butterflies/internal/schema"
	"github.com/roach88/butterflies/internal/service"
	"github.com/roach88/butterflies/internal/store"
)

type testServer struct {
	*Server
	store   store.Store
	metrics *metrics.Metrics
}

// createTestServer returns a server over a JSON store holding butterfly B1
// and user U1.
func createTestServer(t *testing.T, tokens ...string) *testServer {
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
	svc := service.New(st, v, ids.NewFixedGenerator(tokens...), service.WithMetrics(m))
	return &testServer{
		Server:  NewServer(svc, WithMetrics(m)),
		store:   st,
		metrics: m,
	}
}

// do sends a request through the full handler chain. A non-empty body is
// sent as application/json.
func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) ratingCount(t *testing.T) int {
	t.Helper()
	records, err := ts.store.Read(context.Background(), store.Ratings)
	require.NoError(t, err)
	return len(records)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorJson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e.Error
}
