package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipeline(reg)

	m.SampleIngested()
	m.SampleIngested()
	m.PayloadDropped()
	m.PeakDetected(72)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.samples))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.peaks))
	assert.Equal(t, 72.0, testutil.ToFloat64(m.bpm))

	m.Reset()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resets))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.bpm))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestRelay(t *testing.T) {
	m := NewRelay(prometheus.NewRegistry())

	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()
	m.MessageRelayed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.clients))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messages))
}
