package stream

import (
	"encoding/binary"
	"math"
)

// SampleSize es el tamaño mínimo de un payload válido.
const SampleSize = 4

// DecodeVoltage lee los primeros 4 bytes como float32 little-endian.
// Los bytes sobrantes se ignoran; un payload más corto no es una muestra.
func DecodeVoltage(payload []byte) (float32, bool) {
	if len(payload) < SampleSize {
		return 0, false
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(payload)), true
}

func EncodeVoltage(v float32) []byte {
	out := make([]byte, SampleSize)
	binary.LittleEndian.PutUint32(out, math.Float32bits(v))
	return out
}
