package audio

import (
	"encoding/binary"
	"math"
)

// PCM16 converts stereo frames to the signed 16-bit little-endian interleaved
// layout ebiten players read. Values are truncated toward zero and clamped.
func PCM16(frames [][2]float64) []byte {
	out := make([]byte, len(frames)*4)
	for i, f := range frames {
		binary.LittleEndian.PutUint16(out[i*4:], uint16(clamp16(f[0])))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(clamp16(f[1])))
	}
	return out
}

func clamp16(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
