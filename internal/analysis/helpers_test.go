package analysis

import "time"

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func sample(ms int, v float32) Sample {
	return Sample{Timestamp: at(ms), Voltage: v}
}
