package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tripkas/tripkas/internal/event_bus"
)

type Metrics struct {
	registry              *prometheus.Registry
	requests              *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	settlementDuration    prometheus.Histogram
	contributionMutations *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripkas",
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests by route template, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tripkas",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		settlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tripkas",
			Name:      "settlement_compute_duration_seconds",
			Help:      "Time spent computing a settlement view.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		contributionMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripkas",
			Name:      "contribution_mutations_total",
			Help:      "Committed contribution mutations by payment history kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.settlementDuration,
		m.contributionMutations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled with the matched route template,
// so path ids do not blow up label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveSettlement(d time.Duration) {
	m.settlementDuration.Observe(d.Seconds())
}

// SubscribeTo counts contribution mutations published on the bus.
func (m *Metrics) SubscribeTo(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.ContributionChanged, func(e event_bus.EventT[event_bus.ContributionMutation]) error {
		m.contributionMutations.WithLabelValues(e.Data.Kind).Inc()
		return nil
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
