// Package metrics holds the Prometheus collectors for the identity and access core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Login outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Password reset stages.
const (
	StageRequested = "requested"
	StageDelivered = "delivered"
	StageRedeemed  = "redeemed"
	StageRejected  = "rejected"
)

// NewRegistry returns a registry carrying the standard Go and process collectors.
// A private registry keeps tests and multiple fx apps from colliding on the global one.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return registry
}

// AuthMetrics counts authentication and authorization events. A nil
// *AuthMetrics is valid and records nothing.
type AuthMetrics struct {
	logins         *prometheus.CounterVec
	registrations  *prometheus.CounterVec
	passwordResets *prometheus.CounterVec
	authzDecisions *prometheus.CounterVec
}

// NewAuthMetrics creates the collectors and registers them on reg.
func NewAuthMetrics(reg *prometheus.Registry) *AuthMetrics {
	m := &AuthMetrics{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobconnect_auth_logins_total",
				Help: "Total number of login attempts by declared role and outcome",
			},
			[]string{"role", "outcome"},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobconnect_auth_registrations_total",
				Help: "Total number of completed registrations by role",
			},
			[]string{"role"},
		),
		passwordResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobconnect_auth_password_resets_total",
				Help: "Total number of password reset events by stage",
			},
			[]string{"stage"},
		),
		authzDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobconnect_authz_decisions_total",
				Help: "Total number of authorization gate decisions",
			},
			[]string{"decision"},
		),
	}

	reg.MustRegister(m.logins, m.registrations, m.passwordResets, m.authzDecisions)

	return m
}

func (m *AuthMetrics) RecordLogin(role, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(role, outcome).Inc()
}

func (m *AuthMetrics) RecordRegistration(role string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(role).Inc()
}

func (m *AuthMetrics) RecordPasswordReset(stage string) {
	if m == nil {
		return
	}
	m.passwordResets.WithLabelValues(stage).Inc()
}

func (m *AuthMetrics) RecordAuthzDecision(decision string) {
	if m == nil {
		return
	}
	m.authzDecisions.WithLabelValues(decision).Inc()
}
