package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	rec.IncCounter(EventGenerateFailure, map[string]string{"code": "InvalidRequest"})
	rec.IncCounter(EventGenerateFailure, map[string]string{"code": "InvalidRequest"})
	rec.IncCounter(EventTransferSent, map[string]string{"network": "solana-devnet"})
	rec.ObserveLatency(OpModelGenerate, 150*time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.counters.WithLabelValues(EventGenerateFailure, "", "InvalidRequest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.counters.WithLabelValues(EventTransferSent, "solana-devnet", "")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.histogram))
}

func TestPrometheusRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	_, err = NewPrometheusRecorder(reg)
	assert.Error(t, err)
}
