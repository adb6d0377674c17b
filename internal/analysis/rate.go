package analysis

import (
	"time"

	"github.com/gammazero/deque"
)

// PeakHistory guarda las horas de los últimos picos aceptados.
type PeakHistory struct {
	capacity int
	peaks    deque.Deque[time.Time]
}

func NewPeakHistory(capacity int) *PeakHistory {
	if capacity <= 0 {
		capacity = DefaultMaxPeakTimestamps
	}
	return &PeakHistory{capacity: capacity}
}

func (p *PeakHistory) Record(ts time.Time) {
	p.peaks.PushBack(ts)
	for p.peaks.Len() > p.capacity {
		p.peaks.PopFront()
	}
}

func (p *PeakHistory) Timestamps() []time.Time {
	out := make([]time.Time, p.peaks.Len())
	for i := range out {
		out[i] = p.peaks.At(i)
	}
	return out
}

func (p *PeakHistory) Len() int { return p.peaks.Len() }

func (p *PeakHistory) Clear() {
	p.peaks.Clear()
}

// BPM estima la frecuencia a partir de los picos guardados.
func (p *PeakHistory) BPM() float64 {
	return EstimateBPM(p.Timestamps())
}

// EstimateBPM convierte el intervalo medio entre picos consecutivos en
// latidos por minuto. Con menos de dos picos, o con intervalo medio no
// positivo, devuelve 0.
func EstimateBPM(peaks []time.Time) float64 {
	if len(peaks) < 2 {
		return 0
	}

	var sum float64
	for i := 1; i < len(peaks); i++ {
		sum += peaks[i].Sub(peaks[i-1]).Seconds()
	}

	mean := sum / float64(len(peaks)-1)
	if mean <= 0 {
		return 0
	}
	return 60.0 / mean
}
