package analysis

import "time"

// Sample es una lectura de voltaje con su hora de llegada al receptor.
type Sample struct {
	Timestamp time.Time `json:"ts"`
	Voltage   float32   `json:"v"`
}

// PeakEvent marca un latido aceptado por el detector.
type PeakEvent struct {
	Timestamp time.Time
}
