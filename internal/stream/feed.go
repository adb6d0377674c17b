package stream

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-pulse-stream/internal/analysis"
)

// Sink es el destino de las muestras decodificadas. Reset se llama en cada
// corte del transporte.
type Sink interface {
	Ingest(analysis.Sample)
	Reset()
}

// Feed entrega muestras de un transporte a un Sink.
type Feed interface {
	Start(sink Sink) error
	Close() error
}

// FeedOptions son comunes a todos los transportes.
type FeedOptions struct {
	Clock  clock.Clock
	Logger *zap.Logger
	// OnDrop se llama por cada payload descartado.
	OnDrop func()
}

func (o FeedOptions) withDefaults() FeedOptions {
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// receiver convierte payloads en muestras con la hora de llegada.
type receiver struct {
	sink Sink
	opts FeedOptions
}

func newReceiver(sink Sink, opts FeedOptions) *receiver {
	return &receiver{sink: sink, opts: opts.withDefaults()}
}

func (r *receiver) handle(payload []byte) {
	v, ok := DecodeVoltage(payload)
	if !ok {
		r.opts.Logger.Debug("payload dropped", zap.Int("len", len(payload)))
		if r.opts.OnDrop != nil {
			r.opts.OnDrop()
		}
		return
	}
	r.sink.Ingest(analysis.Sample{Timestamp: r.opts.Clock.Now(), Voltage: v})
}

func (r *receiver) lost(transport string, err error) {
	r.opts.Logger.Warn("sensor feed lost, resetting pipeline",
		zap.String("transport", transport),
		zap.Error(err),
	)
	r.sink.Reset()
}
