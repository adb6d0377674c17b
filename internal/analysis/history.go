package analysis

import (
	"time"

	"github.com/gammazero/deque"
)

// SampleHistory guarda las últimas muestras en orden de llegada.
// Al superar la capacidad descarta las más antiguas.
type SampleHistory struct {
	capacity int
	samples  deque.Deque[Sample]
}

func NewSampleHistory(capacity int) *SampleHistory {
	if capacity <= 0 {
		capacity = DefaultMaxHistoryCount
	}
	return &SampleHistory{capacity: capacity}
}

func (h *SampleHistory) Append(s Sample) {
	h.samples.PushBack(s)
	for h.samples.Len() > h.capacity {
		h.samples.PopFront()
	}
}

// Recent devuelve las muestras con Timestamp >= now-window, en orden original.
// Nunca devuelve nil.
func (h *SampleHistory) Recent(window time.Duration, now time.Time) []Sample {
	cutoff := now.Add(-window)

	out := make([]Sample, 0, h.samples.Len())
	for i := 0; i < h.samples.Len(); i++ {
		s := h.samples.At(i)
		if !s.Timestamp.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// Samples devuelve una copia de todo el historial.
func (h *SampleHistory) Samples() []Sample {
	out := make([]Sample, h.samples.Len())
	for i := range out {
		out[i] = h.samples.At(i)
	}
	return out
}

func (h *SampleHistory) Len() int      { return h.samples.Len() }
func (h *SampleHistory) Capacity() int { return h.capacity }

func (h *SampleHistory) Clear() {
	h.samples.Clear()
}
