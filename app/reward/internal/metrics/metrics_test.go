package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRegister(t *testing.T) {
	m, err := New(&Config{Namespace: "test"})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg))

	m.RecordGachaPull("NormalGacha", "SSR")
	m.RecordGachaPull("NormalGacha", "SSR")
	m.RecordMailReceived(3)
	m.RecordDBQuery("select", true, 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.GachaPullTotal.WithLabelValues("NormalGacha", "SSR")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.MailReceivedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DBQueryTotal.WithLabelValues("select", "success")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *RewardMetrics
	assert.NotPanics(t, func() {
		m.RecordGachaPull("x", "y")
		m.RecordGachaPurchase(false)
		m.RecordMailSent("System", 1)
		m.RecordMailReceived(1)
		m.RecordMailPurged(1)
		m.RecordDBQuery("select", false, 0)
		m.RecordCacheHit("redis")
		m.RecordCacheMiss("redis")
	})
}
