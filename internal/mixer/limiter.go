package mixer

import "math"

// SoftKnee compresses only the part of a signal above its threshold. Samples
// at or below the threshold pass through unchanged.
type SoftKnee struct {
	threshold float64
}

func NewSoftKnee(threshold float64) *SoftKnee {
	return &SoftKnee{threshold: threshold}
}

// Process scales the excess above threshold by threshold/peak, keeping sign.
// Buffers whose peak is within the threshold are left alone.
func (s *SoftKnee) Process(buf [][2]float64) {
	if s.threshold <= 0 {
		return
	}
	peak := Peak(buf)
	if peak <= s.threshold {
		return
	}
	ratio := s.threshold / peak
	for i := range buf {
		buf[i][0] = s.compress(buf[i][0], ratio)
		buf[i][1] = s.compress(buf[i][1], ratio)
	}
}

func (s *SoftKnee) compress(v, ratio float64) float64 {
	a := math.Abs(v)
	if a <= s.threshold {
		return v
	}
	return math.Copysign(s.threshold+(a-s.threshold)*ratio, v)
}

// Peak returns the largest absolute sample in buf.
func Peak(buf [][2]float64) float64 {
	var peak float64
	for _, f := range buf {
		if a := math.Abs(f[0]); a > peak {
			peak = a
		}
		if a := math.Abs(f[1]); a > peak {
			peak = a
		}
	}
	return peak
}
