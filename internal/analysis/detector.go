package analysis

import "time"

// DetectorState es el estado del detector entre muestras.
// LastPeak en cero significa que todavía no hubo ningún pico.
type DetectorState struct {
	PreviousVoltage float32
	LastPeak        time.Time
}

// Detect aplica una muestra sobre el estado y decide si hay un pico.
//
// Un pico candidato es un cruce ascendente: el valor anterior estaba por
// debajo del umbral y el actual está en el umbral o por encima. El primer
// pico siempre se acepta; los siguientes sólo si pasaron al menos
// MinPeakInterval desde el último aceptado. Un candidato rechazado no mueve
// LastPeak.
func Detect(cfg Config, state DetectorState, s Sample) (DetectorState, PeakEvent, bool) {
	rising := state.PreviousVoltage < cfg.PeakThreshold && s.Voltage >= cfg.PeakThreshold
	state.PreviousVoltage = s.Voltage

	if !rising {
		return state, PeakEvent{}, false
	}

	if !state.LastPeak.IsZero() && s.Timestamp.Sub(state.LastPeak) < cfg.MinPeakInterval {
		return state, PeakEvent{}, false
	}

	state.LastPeak = s.Timestamp
	return state, PeakEvent{Timestamp: s.Timestamp}, true
}

// PeakDetector mantiene el DetectorState entre llamadas a Process.
type PeakDetector struct {
	cfg   Config
	state DetectorState
}

func NewPeakDetector(cfg Config) *PeakDetector {
	return &PeakDetector{cfg: cfg.withDefaults()}
}

// Process devuelve el evento si la muestra produce un pico aceptado.
func (d *PeakDetector) Process(s Sample) (PeakEvent, bool) {
	var (
		ev PeakEvent
		ok bool
	)
	d.state, ev, ok = Detect(d.cfg, d.state, s)
	return ev, ok
}

func (d *PeakDetector) State() DetectorState { return d.state }

func (d *PeakDetector) Reset() {
	d.state = DetectorState{}
}
