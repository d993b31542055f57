package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherCounters(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				out[f.GetName()] += c.GetValue()
			}
		}
	}
	return out
}

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SettlementEvents.WithLabelValues("finished", "applied_completed").Inc()
	m.SettlementEvents.WithLabelValues("finished", "noop_terminal").Inc()
	m.WebhookAuthFailure.Inc()
	m.DebitRejected.WithLabelValues("deposit").Inc()

	counters := gatherCounters(t, reg)
	assert.Equal(t, 2.0, counters["settlement_events_total"])
	assert.Equal(t, 1.0, counters["webhook_signature_failures_total"])
	assert.Equal(t, 1.0, counters["wallet_debit_rejected_total"])
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	m := New(nil)
	assert.Same(t, m, OrNop(m))
}
