package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Instrument)
	r.Get("/apps/{appId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/apps/{appId}", "418"))
	for _, id := range []string{"APP001", "APP002"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apps/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/apps/{appId}", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordTransitionSkipsZero(t *testing.T) {
	c := transitions.WithLabelValues("prepare_dev", "applied")
	before := testutil.ToFloat64(c)
	RecordTransition("prepare_dev", "applied", 0)
	RecordTransition("prepare_dev", "applied", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(c)-before)
}

func TestRecordTaskOutcome(t *testing.T) {
	ok := tasks.WithLabelValues("onboarding:provision", "success")
	bad := tasks.WithLabelValues("onboarding:provision", "failure")
	okBefore, badBefore := testutil.ToFloat64(ok), testutil.ToFloat64(bad)

	RecordTask("onboarding:provision", nil)
	RecordTask("onboarding:provision", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(ok)-okBefore)
	assert.Equal(t, 1.0, testutil.ToFloat64(bad)-badBefore)
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordSearchCache("hit")
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "cloud_next_search_cache_lookups_total"))
}
