package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAuthMetrics_Counts(t *testing.T) {
	m := NewAuthMetrics(prometheus.NewRegistry())

	m.RecordLogin("APPLICANT", OutcomeSuccess)
	m.RecordLogin("APPLICANT", OutcomeSuccess)
	m.RecordLogin("EMPLOYER", OutcomeFailure)
	m.RecordRegistration("EMPLOYER")
	m.RecordPasswordReset(StageRequested)
	m.RecordAuthzDecision("forbidden")

	assert.InDelta(t, 2, testutil.ToFloat64(m.logins.WithLabelValues("APPLICANT", OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.logins.WithLabelValues("EMPLOYER", OutcomeFailure)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.registrations.WithLabelValues("EMPLOYER")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.passwordResets.WithLabelValues(StageRequested)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.authzDecisions.WithLabelValues("forbidden")), 0)
}

func TestAuthMetrics_NilIsNoop(t *testing.T) {
	var m *AuthMetrics

	assert.NotPanics(t, func() {
		m.RecordLogin("APPLICANT", OutcomeSuccess)
		m.RecordRegistration("APPLICANT")
		m.RecordPasswordReset(StageRedeemed)
		m.RecordAuthzDecision("allow")
	})
}

func TestNewRegistry_GathersRuntimeCollectors(t *testing.T) {
	families, err := NewRegistry().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
