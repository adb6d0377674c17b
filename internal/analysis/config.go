package analysis

import "time"

// Valores por defecto del pipeline.
const (
	DefaultMaxHistoryCount   = 500
	DefaultTimeWindow        = 5 * time.Second
	DefaultPeakThreshold     = 2.8
	DefaultMinPeakInterval   = 300 * time.Millisecond
	DefaultMaxPeakTimestamps = 10
)

// Config agrupa los parámetros ajustables del pipeline.
type Config struct {
	MaxHistoryCount   int
	TimeWindow        time.Duration
	PeakThreshold     float32
	MinPeakInterval   time.Duration
	MaxPeakTimestamps int
}

func DefaultConfig() Config {
	return Config{
		MaxHistoryCount:   DefaultMaxHistoryCount,
		TimeWindow:        DefaultTimeWindow,
		PeakThreshold:     DefaultPeakThreshold,
		MinPeakInterval:   DefaultMinPeakInterval,
		MaxPeakTimestamps: DefaultMaxPeakTimestamps,
	}
}

// withDefaults completa los campos en cero. MinPeakInterval en cero es válido
// (sin debounce) y se respeta.
func (c Config) withDefaults() Config {
	if c.MaxHistoryCount <= 0 {
		c.MaxHistoryCount = DefaultMaxHistoryCount
	}
	if c.TimeWindow <= 0 {
		c.TimeWindow = DefaultTimeWindow
	}
	if c.PeakThreshold == 0 {
		c.PeakThreshold = DefaultPeakThreshold
	}
	if c.MaxPeakTimestamps <= 0 {
		c.MaxPeakTimestamps = DefaultMaxPeakTimestamps
	}
	return c
}
