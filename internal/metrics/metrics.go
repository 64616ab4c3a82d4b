// Package metrics exposes Prometheus instrumentation for scoring runs
// and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// Metrics bundles every instrument the service records.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	UnitsScoredTotal  *prometheus.CounterVec
	HighRiskUnits     *prometheus.GaugeVec
	HTTPRequestsTotal *prometheus.CounterVec
}

// New registers the instruments with reg. Pass
// prometheus.DefaultRegisterer in production; tests pass a fresh
// registry so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RunsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoring_runs_total",
				Help: "Total scoring runs by final status",
			},
			[]string{"account_id", "status"},
		),

		RunDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scoring_run_duration_seconds",
				Help:    "Wall clock duration of scoring runs in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"account_id"},
		),

		UnitsScoredTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoring_units_scored_total",
				Help: "Total ad units scored across runs",
			},
			[]string{"account_id"},
		),

		HighRiskUnits: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scoring_high_risk_units",
				Help: "High risk units found by the most recent run",
			},
			[]string{"account_id"},
		),

		HTTPRequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by route pattern, method, and status",
			},
			[]string{"path", "method", "status"},
		),
	}
}

// ObserveRun records the outcome of one scoring run.
func (m *Metrics) ObserveRun(accountID string, status domain.RunStatus, duration time.Duration, unitsScored, highRisk int) {
	m.RunsTotal.WithLabelValues(accountID, string(status)).Inc()
	m.RunDuration.WithLabelValues(accountID).Observe(duration.Seconds())
	m.UnitsScoredTotal.WithLabelValues(accountID).Add(float64(unitsScored))
	m.HighRiskUnits.WithLabelValues(accountID).Set(float64(highRisk))
}

// Middleware counts every request once the handler has written its
// response. The chi route pattern is used instead of the raw path so
// parameterized routes stay one series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		m.HTTPRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}

// Handler serves the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
