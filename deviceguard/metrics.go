package deviceguard

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	checks    *prometheus.CounterVec
	kicks     prometheus.Counter
	publishes *prometheus.CounterVec
}

// NewMetrics registers the guard counters on reg. A nil reg creates unregistered
// counters, which tests use to read values without a global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nehanotes",
			Subsystem: "device_guard",
			Name:      "checks_total",
			Help:      "Guard cycles by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		kicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nehanotes",
			Subsystem: "device_guard",
			Name:      "kicks_total",
			Help:      "Sessions signed out because another device took over.",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nehanotes",
			Subsystem: "device_guard",
			Name:      "token_publishes_total",
			Help:      "Device token publishes at login by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.checks, m.kicks, m.publishes)
	}

	return m
}

func (m *Metrics) check(trigger string, outcome Outcome) {
	if m != nil {
		m.checks.WithLabelValues(trigger, string(outcome)).Inc()
	}
}

// ObserveCheck counts a validation made outside a Guard, such as per request.
func (m *Metrics) ObserveCheck(trigger string, outcome Outcome) {
	m.check(trigger, outcome)
}

func (m *Metrics) kick() {
	if m != nil {
		m.kicks.Inc()
	}
}

func (m *Metrics) publish(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.publishes.WithLabelValues("ok").Inc()
	} else {
		m.publishes.WithLabelValues("failed").Inc()
	}
}
