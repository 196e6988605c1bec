package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgraph/internal/platform/metrics"
)

func TestRouteLabelUsesTheMatchedPattern(t *testing.T) {
	router := chi.NewRouter()
	var label string
	router.Get("/credential/{hash}", func(w http.ResponseWriter, r *http.Request) {
		label = RouteLabel(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/credential/abc123", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "/credential/{hash}", label)
}

func TestRouteLabelOutsideARouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	assert.Equal(t, "unmatched", RouteLabel(req))
}

func TestLatencyCollapsesParameterizedRoutes(t *testing.T) {
	m := metrics.New()
	router := chi.NewRouter()
	router.Use(Latency(m))
	router.Get("/credential/{hash}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/credential/aaa", "/credential/bbb", "/credential/ccc"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	// Three distinct hashes, one histogram series.
	require.Equal(t, 1, testutil.CollectAndCount(m.RequestLatencySecond))
}
