package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Interceptor outcomes.
const (
	OutcomeInvalid       = "invalid"
	OutcomeLookupFailed  = "lookup_failed"
	OutcomeNotConfigured = "not_configured"
	OutcomeNoChanges     = "no_changes"
	OutcomeAudited       = "audited"
	OutcomeWriteFailed   = "write_failed"
)

// OtherEntity replaces the entity label of mutations that never resolved an
// audit policy. Only configured entities get their own series.
const OtherEntity = "other"

// Metrics holds the Prometheus collectors of the interceptor.
type Metrics struct {
	Mutations     *prometheus.CounterVec
	ChangesTotal  prometheus.Counter
	WritesTotal   *prometheus.CounterVec
	PolicyLookups *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "change_audit_mutations_total",
			Help: "Total number of intercepted mutations by outcome",
		}, []string{"entity", "outcome"}),
		ChangesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "change_audit_field_changes_total",
			Help: "Total number of detected changes on audited fields",
		}),
		WritesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "change_audit_writes_total",
			Help: "Total number of audit entry writes by result",
		}, []string{"result"}),
		PolicyLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "change_audit_policy_lookups_total",
			Help: "Total number of audit policy lookups by source",
		}, []string{"source"}),
	}
}

func (m *Metrics) ObserveMutation(entity, outcome string) {
	switch outcome {
	case OutcomeAudited, OutcomeNoChanges, OutcomeWriteFailed:
	default:
		entity = OtherEntity
	}
	m.Mutations.WithLabelValues(entity, outcome).Inc()
}

func (m *Metrics) ObserveChange() {
	m.ChangesTotal.Inc()
}

func (m *Metrics) ObserveWrite(err error) {
	if err != nil {
		m.WritesTotal.WithLabelValues("error").Inc()
		return
	}
	m.WritesTotal.WithLabelValues("ok").Inc()
}

// ObservePolicyLookup records whether a policy came from the cache or the store.
func (m *Metrics) ObservePolicyLookup(cached bool) {
	if cached {
		m.PolicyLookups.WithLabelValues("cache").Inc()
		return
	}
	m.PolicyLookups.WithLabelValues("store").Inc()
}
