package samples

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// resample converts stereo frames between rates. The converter works on
// interleaved samples normalized to [-1, 1].
func resample(frames [][2]float64, from, to int) ([][2]float64, error) {
	if from <= 0 {
		return nil, fmt.Errorf("invalid source sample rate %d", from)
	}
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   2,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}
	input := make([]float64, len(frames)*2)
	for i, f := range frames {
		input[i*2] = f[0] / 32768
		input[i*2+1] = f[1] / 32768
	}
	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	out := make([][2]float64, len(output)/2)
	for i := range out {
		out[i] = [2]float64{output[i*2] * 32768, output[i*2+1] * 32768}
	}
	return out, nil
}
