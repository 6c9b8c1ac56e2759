// Package mixer sums the two hands, limits and normalizes the result, and
// converts it to 16-bit output samples.
package mixer

import "math"

type Params struct {
	// Headroom is the target peak as a fraction of full scale.
	Headroom float64
	// Threshold is the limiter knee as a fraction of the target peak.
	Threshold float64
	Limit     bool
}

func DefaultParams() Params {
	return Params{
		Headroom:  0.7,
		Threshold: 0.9,
		Limit:     true,
	}
}

// Target returns the output peak in integer sample units.
func (p Params) Target() float64 {
	return p.Headroom * math.MaxInt16
}

// Sum adds right and left frame by frame, truncated to the shorter buffer.
// Neither input is modified.
func Sum(right, left [][2]float64) [][2]float64 {
	n := len(right)
	if len(left) < n {
		n = len(left)
	}
	out := make([][2]float64, n)
	for i := 0; i < n; i++ {
		out[i][0] = right[i][0] + left[i][0]
		out[i][1] = right[i][1] + left[i][1]
	}
	return out
}

// Normalize scales buf in place so its peak equals target. Silent buffers are
// left untouched.
func Normalize(buf [][2]float64, target float64) {
	peak := Peak(buf)
	if peak == 0 {
		return
	}
	scale := target / peak
	for i := range buf {
		buf[i][0] *= scale
		buf[i][1] *= scale
	}
}

// ToInt16 truncates toward zero into interleaved stereo samples.
func ToInt16(buf [][2]float64) []int16 {
	out := make([]int16, len(buf)*2)
	for i, f := range buf {
		out[i*2] = clamp16(f[0])
		out[i*2+1] = clamp16(f[1])
	}
	return out
}

func clamp16(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// Mix runs the whole chain: sum, optional soft-knee limiting, normalization
// and conversion. The peak of the result never exceeds p.Target().
func Mix(right, left [][2]float64, p Params) []int16 {
	buf := Sum(right, left)
	target := p.Target()
	if p.Limit {
		NewSoftKnee(p.Threshold * target).Process(buf)
	}
	Normalize(buf, target)
	return ToInt16(buf)
}
