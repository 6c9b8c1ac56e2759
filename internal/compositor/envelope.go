package compositor

import "math"

// fadeIn returns n gains rising 0 -> 1 along 1 - cos(t·π/2).
func fadeIn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 - math.Cos(curvePos(i, n)*math.Pi/2)
	}
	return out
}

// fadeOut returns n gains falling 1 -> 0 along cos(t·π/2).
func fadeOut(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Cos(curvePos(i, n) * math.Pi / 2)
	}
	return out
}

// curvePos spaces n points evenly over [0, 1], both ends included.
func curvePos(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
