package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expense_app"

// Recorder owns the application's collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.HistogramVec
	expensesSubmitted   *prometheus.CounterVec
	workflowInitiations *prometheus.CounterVec
	approvalActions     *prometheus.CounterVec
	fxConversions       *prometheus.CounterVec
}

// NewRecorder registers all collectors on a fresh registry, together with the Go and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{registry: reg}
	r.httpRequests = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests by method, route and status",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	r.expensesSubmitted = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expenses",
			Name:      "submitted_total",
			Help:      "Total number of submitted expenses by category",
		},
		[]string{"category"},
	)
	r.workflowInitiations = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "initiations_total",
			Help:      "Workflow initiations by outcome (created, auto_approved, failed)",
		},
		[]string{"outcome"},
	)
	r.approvalActions = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "approval_actions_total",
			Help:      "Processed approval actions by action and resulting expense status",
		},
		[]string{"action", "result"},
	)
	r.fxConversions = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "currency",
			Name:      "conversions_total",
			Help:      "Currency conversions by rate source (identity, cache, api, error)",
		},
		[]string{"source"},
	)
	return r
}

func (r *Recorder) ObserveHTTPRequest(method, route, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func (r *Recorder) ExpenseSubmitted(category string) {
	if r == nil {
		return
	}
	r.expensesSubmitted.WithLabelValues(category).Inc()
}

func (r *Recorder) WorkflowInitiated(outcome string) {
	if r == nil {
		return
	}
	r.workflowInitiations.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ApprovalProcessed(action, result string) {
	if r == nil {
		return
	}
	r.approvalActions.WithLabelValues(action, result).Inc()
}

func (r *Recorder) CurrencyConverted(source string) {
	if r == nil {
		return
	}
	r.fxConversions.WithLabelValues(source).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests that gather collected values.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
