package credential

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"neatauth/internal/model"
)

// Operation labels.
const (
	OpProvision = "provision"
	OpTransform = "transform"
	OpEnroll    = "enroll"
	OpVerify    = "verify"
	OpDelete    = "delete"
	OpInspect   = "inspect"
)

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeNotFound  = "not_found"
	OutcomeMalformed = "malformed"
	OutcomeShape     = "shape_mismatch"
	OutcomeError     = "error"
)

// Metrics contains the Prometheus collectors of the credential service.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CacheEntries      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which is what tests and one-shot CLI runs want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neatauth_operations_total",
				Help: "Total number of credential operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "neatauth_operation_duration_seconds",
				Help:    "Latency of credential operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "neatauth_network_cache_entries",
				Help: "Number of compiled networks held in memory",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.OperationsTotal)
		reg.MustRegister(m.OperationDuration)
		reg.MustRegister(m.CacheEntries)
	}
	return m
}

func (m *Metrics) observe(op, outcome string, started time.Time) {
	m.OperationsTotal.WithLabelValues(op, outcome).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, model.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, model.ErrMalformedGenome):
		return OutcomeMalformed
	case errors.Is(err, model.ErrShapeMismatch):
		return OutcomeShape
	default:
		return OutcomeError
	}
}
