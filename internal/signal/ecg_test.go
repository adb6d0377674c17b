package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanzxc/go-pulse-stream/internal/analysis"
)

func TestECGSim_Range(t *testing.T) {
	sim := NewECGSim(250, 72, 0.02)

	lo, hi := float32(10), float32(-10)
	for i := 0; i < 2500; i++ {
		v := sim.Next()
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	assert.Greater(t, hi, float32(analysis.DefaultPeakThreshold))
	assert.Less(t, hi, float32(3.6))
	assert.Greater(t, lo, float32(0.5))
}

func TestECGSim_ThroughProcessor(t *testing.T) {
	for _, hr := range []float64{60, 72, 110} {
		sim := NewECGSim(250, hr, 0.02)
		p := analysis.NewStreamProcessor(analysis.DefaultConfig())

		start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		step := time.Duration(sim.Period() * float64(time.Second))
		seconds := 20
		for i := 0; i < seconds*250; i++ {
			p.Ingest(analysis.Sample{
				Timestamp: start.Add(time.Duration(i) * step),
				Voltage:   sim.Next(),
			})
		}

		wantBeats := hr / 60 * float64(seconds)
		require.InDelta(t, wantBeats, float64(p.Peaks()), 1.5, "hr=%v", hr)
		assert.InDelta(t, hr, p.BPM(), 2, "hr=%v", hr)
	}
}
