// Package metrics expone contadores Prometheus del pipeline y del relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pulse"

// Pipeline implementa analysis.Observer.
type Pipeline struct {
	samples prometheus.Counter
	dropped prometheus.Counter
	peaks   prometheus.Counter
	resets  prometheus.Counter
	bpm     prometheus.Gauge
}

func NewPipeline(reg prometheus.Registerer) *Pipeline {
	f := promauto.With(reg)
	return &Pipeline{
		samples: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_ingested_total",
			Help:      "Samples accepted by the stream processor.",
		}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_dropped_total",
			Help:      "Payloads too short to decode a voltage.",
		}),
		peaks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peaks_detected_total",
			Help:      "Peaks accepted by the detector.",
		}),
		resets: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Pipeline resets caused by transport disconnects.",
		}),
		bpm: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bpm",
			Help:      "Current beats-per-minute estimate, 0 when unknown.",
		}),
	}
}

func (p *Pipeline) SampleIngested() { p.samples.Inc() }
func (p *Pipeline) PayloadDropped() { p.dropped.Inc() }

func (p *Pipeline) PeakDetected(bpm float64) {
	p.peaks.Inc()
	p.bpm.Set(bpm)
}

func (p *Pipeline) Reset() {
	p.resets.Inc()
	p.bpm.Set(0)
}

// Relay cuenta lo que el servidor reenvía a los navegadores.
type Relay struct {
	messages prometheus.Counter
	clients  prometheus.Gauge
}

func NewRelay(reg prometheus.Registerer) *Relay {
	f := promauto.With(reg)
	return &Relay{
		messages: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Snapshots relayed to websocket clients.",
		}),
		clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected websocket clients.",
		}),
	}
}

func (r *Relay) MessageRelayed()     { r.messages.Inc() }
func (r *Relay) ClientConnected()    { r.clients.Inc() }
func (r *Relay) ClientDisconnected() { r.clients.Dec() }
