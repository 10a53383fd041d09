package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripkas/tripkas/internal/event_bus"
)

func TestMetrics_Middleware(t *testing.T) {
	t.Run("should label requests with the route template", func(t *testing.T) {
		// given
		m := New()
		r := mux.NewRouter()
		r.Use(m.Middleware)
		r.HandleFunc("/api/plan/{planId}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}).Methods("GET")

		// when
		for _, id := range []string{"1", "2"} {
			req := httptest.NewRequest(http.MethodGet, "/api/plan/"+id, nil)
			r.ServeHTTP(httptest.NewRecorder(), req)
		}

		// then
		count := testutil.ToFloat64(m.requests.WithLabelValues("/api/plan/{planId}", "GET", "404"))
		assert.Equal(t, float64(2), count)
	})
}

func TestMetrics_SubscribeTo(t *testing.T) {
	m := New()
	bus := event_bus.NewEventBus()
	m.SubscribeTo(bus)

	err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.ContributionChanged,
		event_bus.ContributionMutation{PlanId: 1, ContributionId: 2, Kind: "payment"}))
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.contributionMutations.WithLabelValues("payment")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveSettlement(2 * time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tripkas_settlement_compute_duration_seconds_count 1")
}
