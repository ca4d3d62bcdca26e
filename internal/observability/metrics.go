package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the sizing service.
type Metrics struct {
	Calculations        *prometheus.CounterVec   // labels: kind, outcome={ok,error}
	CalculationWarnings *prometheus.CounterVec   // labels: kind
	CalculationDuration *prometheus.HistogramVec // labels: kind

	// Catalog metrics.
	CatalogReloads        *prometheus.CounterVec // labels: outcome={ok,aborted}
	CatalogRecordsSkipped prometheus.Counter
	CatalogMaterials      prometheus.Gauge
	CatalogFittings       prometheus.Gauge

	HistoryWrites *prometheus.CounterVec // labels: outcome={ok,error}
	RateLimited   prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ductolator",
			Name:      "calculations_total",
			Help:      "Calculation requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		CalculationWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ductolator",
			Name:      "calculation_warnings_total",
			Help:      "Warnings attached to calculation results.",
		}, []string{"kind"}),
		CalculationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ductolator",
			Name:      "calculation_duration_seconds",
			Help:      "Time to serve one calculation request.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		}, []string{"kind"}),
		CatalogReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ductolator",
			Name:      "catalog_reloads_total",
			Help:      "Catalog folder loads by outcome.",
		}, []string{"outcome"}),
		CatalogRecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ductolator",
			Name:      "catalog_records_skipped_total",
			Help:      "External catalog records skipped because they failed to parse.",
		}),
		CatalogMaterials: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ductolator",
			Name:      "catalog_materials",
			Help:      "Materials in the active catalog snapshot.",
		}),
		CatalogFittings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ductolator",
			Name:      "catalog_fittings",
			Help:      "Fittings in the active catalog snapshot.",
		}),
		HistoryWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ductolator",
			Name:      "history_writes_total",
			Help:      "Calculation history inserts by outcome.",
		}, []string{"outcome"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ductolator",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-IP rate limiter.",
		}),
	}
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.Calculations,
		m.CalculationWarnings,
		m.CalculationDuration,
		m.CatalogReloads,
		m.CatalogRecordsSkipped,
		m.CatalogMaterials,
		m.CatalogFittings,
		m.HistoryWrites,
		m.RateLimited,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build
// as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Instrument counts and times a calculation handler. Responses with status
// 400 and above count as errors.
func (m *Metrics) Instrument(kind string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		outcome := "ok"
		if rec.status >= http.StatusBadRequest {
			outcome = "error"
		}
		m.Calculations.WithLabelValues(kind, outcome).Inc()
		m.CalculationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}
