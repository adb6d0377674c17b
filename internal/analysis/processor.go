package analysis

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Observer recibe notificaciones del procesador (métricas). Se llama con el
// lock del procesador tomado: no debe bloquear ni volver a llamar al
// procesador.
type Observer interface {
	SampleIngested()
	PeakDetected(bpm float64)
	Reset()
}

type Option func(*StreamProcessor)

func WithLogger(l *zap.Logger) Option {
	return func(p *StreamProcessor) {
		if l != nil {
			p.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(p *StreamProcessor) { p.obs = o }
}

// Snapshot es una vista consistente del estado publicado.
type Snapshot struct {
	SessionID uuid.UUID `json:"session_id"`
	Ts        int64     `json:"ts"`
	Voltage   float32   `json:"voltage"`
	Peaks     uint64    `json:"peaks"`
	BPM       float64   `json:"bpm"`
	History   []Sample  `json:"history"`
}

// StreamProcessor es el único dueño del estado del pipeline.
// Ingest y Reset se serializan con mu; las lecturas toman el lock de
// lectura, así que nunca ven un historial a medio actualizar.
type StreamProcessor struct {
	mu sync.RWMutex

	cfg Config
	log *zap.Logger
	obs Observer

	history  *SampleHistory
	detector *PeakDetector
	peaks    *PeakHistory

	session uuid.UUID
	voltage float32
	count   uint64
	bpm     float64
}

func NewStreamProcessor(cfg Config, opts ...Option) *StreamProcessor {
	cfg = cfg.withDefaults()
	p := &StreamProcessor{
		cfg:      cfg,
		log:      zap.NewNop(),
		history:  NewSampleHistory(cfg.MaxHistoryCount),
		detector: NewPeakDetector(cfg),
		peaks:    NewPeakHistory(cfg.MaxPeakTimestamps),
		session:  uuid.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest procesa una muestra. Las muestras deben llegar en orden.
func (p *StreamProcessor) Ingest(s Sample) {
	p.mu.Lock()

	p.voltage = s.Voltage
	p.history.Append(s)

	ev, ok := p.detector.Process(s)
	if ok {
		p.count++
		p.peaks.Record(ev.Timestamp)
		p.bpm = p.peaks.BPM()
	}
	count, bpm := p.count, p.bpm

	// El observer se notifica bajo el lock para que un Reset concurrente no
	// quede pisado por un BPM viejo.
	if p.obs != nil {
		p.obs.SampleIngested()
		if ok {
			p.obs.PeakDetected(bpm)
		}
	}

	p.mu.Unlock()

	if ok {
		p.log.Debug("peak detected",
			zap.Time("ts", ev.Timestamp),
			zap.Uint64("peaks", count),
			zap.Float64("bpm", bpm),
		)
	}
}

// Reset vuelve todo al estado inicial y abre una nueva sesión.
func (p *StreamProcessor) Reset() {
	p.mu.Lock()
	prev := p.session

	p.history.Clear()
	p.detector.Reset()
	p.peaks.Clear()
	p.voltage = 0
	p.count = 0
	p.bpm = 0
	p.session = uuid.New()
	next := p.session

	if p.obs != nil {
		p.obs.Reset()
	}

	p.mu.Unlock()

	p.log.Info("pipeline reset",
		zap.Stringer("previous_session", prev),
		zap.Stringer("session", next),
	)
}

func (p *StreamProcessor) Snapshot(now time.Time) Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Snapshot{
		SessionID: p.session,
		Ts:        now.UnixMilli(),
		Voltage:   p.voltage,
		Peaks:     p.count,
		BPM:       p.bpm,
		History:   p.history.Recent(p.cfg.TimeWindow, now),
	}
}

func (p *StreamProcessor) Voltage() float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.voltage
}

func (p *StreamProcessor) Peaks() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.count
}

func (p *StreamProcessor) BPM() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bpm
}

func (p *StreamProcessor) Recent(now time.Time) []Sample {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.history.Recent(p.cfg.TimeWindow, now)
}

func (p *StreamProcessor) SessionID() uuid.UUID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

func (p *StreamProcessor) Config() Config { return p.cfg }
