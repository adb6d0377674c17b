package signal

import "math"

// Rango de voltaje del sensor: reposo en ~1.6V y onda R en ~3.3V.
//
// Con Gain=1.7 la onda R (amplitud 1.0) llega a 1.6+1.7 ≈ 3.3V y cruza el
// umbral de 2.8V en cada latido, mientras que la T (0.25) queda en ~2.0V y
// la P (0.08) en ~1.75V. Así hay exactamente un cruce por ciclo y el BPM
// detectado coincide con hrBPM.
const (
	SensorBaseline = 1.6
	SensorGain     = 1.7
)

// ECGSim genera una forma tipo ECG (no clínica) a fs Hz, ya escalada al
// rango del sensor.
type ECGSim struct {
	fs    float64
	phase float64
	hrBPM float64
	noise float64
}

// NewECGSim fs=250, hrBPM típico 60-120, noise ~0.0-0.05
func NewECGSim(fs, hrBPM, noise float64) *ECGSim {
	return &ECGSim{fs: fs, hrBPM: hrBPM, noise: noise}
}

// Period devuelve el intervalo entre muestras en segundos.
func (s *ECGSim) Period() float64 { return 1 / s.fs }

// Next devuelve el próximo voltaje y avanza el tiempo.
func (s *ECGSim) Next() float32 {
	cycleHz := s.hrBPM / 60.0
	s.phase += cycleHz / s.fs
	if s.phase >= 1.0 {
		s.phase -= 1.0
	}

	t := s.phase // 0..1

	baseline := 0.05 * math.Sin(2*math.Pi*0.33*t)

	// P, QRS, T como gaussianas
	p := 0.08 * gauss(t, 0.18, 0.03)
	q := -0.12 * gauss(t, 0.30, 0.01)
	r := 1.00 * gauss(t, 0.32, 0.008)
	sv := -0.25 * gauss(t, 0.35, 0.012)
	tt := 0.25 * gauss(t, 0.60, 0.06)

	// ruido determinista simple (barato)
	n := s.noise * (2*fract(math.Sin(12345.678*t)*9876.543) - 1)

	return float32(SensorBaseline + SensorGain*(baseline+p+q+r+sv+tt+n))
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func fract(x float64) float64 { return x - math.Floor(x) }
