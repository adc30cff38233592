// Package metrics holds the Prometheus collectors of the dispatch service.
// They live on a private registry so tests can build as many as they like.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"fleet/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK                = "ok"
	OutcomeConflict          = "conflict"
	OutcomeNotFound          = "not_found"
	OutcomeInvalidTransition = "invalid_transition"
	OutcomeInvalid           = "invalid"
	OutcomeError             = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	operations           *prometheus.CounterVec
	operationDuration    *prometheus.HistogramVec
	collaboratorFailures *prometheus.CounterVec
	expiredAssignments   prometheus.Counter
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_workflow_operations_total",
			Help: "Workflow operations by name and outcome",
		}, []string{"operation", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleet_workflow_operation_duration_seconds",
			Help:    "Duration of workflow operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		collaboratorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_collaborator_failures_total",
			Help: "Swallowed failures of the notification synchronizer and the event publisher",
		}, []string{"collaborator"}),
		expiredAssignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_assignments_expired_total",
			Help: "Assignments closed by the expiry sweep",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	m.registry.MustRegister(
		m.operations,
		m.operationDuration,
		m.collaboratorFailures,
		m.expiredAssignments,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOperation records one workflow operation started at start.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) CollaboratorFailed(collaborator string) {
	m.collaboratorFailures.WithLabelValues(collaborator).Inc()
}

func (m *Metrics) AssignmentsExpired(n int) {
	m.expiredAssignments.Add(float64(n))
}

func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// Outcome classifies err by the errs taxonomy.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, errs.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, errs.ErrObjectNotFound):
		return OutcomeNotFound
	case errors.Is(err, errs.ErrInvalidTransition):
		return OutcomeInvalidTransition
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
