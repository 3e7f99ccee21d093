package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/users/{id}", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/users/{id}", http.StatusOK, 7*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/users/{id}", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/users/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/users/{id}", "404")))
}

func TestRatingOutcome(t *testing.T) {
	m := New()
	m.RatingOutcome("created")
	m.RatingOutcome("duplicate")
	m.RatingOutcome("duplicate")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ratings.WithLabelValues("created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ratings.WithLabelValues("duplicate")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.RatingOutcome("created")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `butterflies_rating_submissions_total{outcome="created"} 1`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two instances must not panic on duplicate registration.
	a, b := New(), New()
	assert.NotSame(t, a.Registry(), b.Registry())
}
