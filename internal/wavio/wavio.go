// Package wavio reads sample assets and writes rendered scores as WAV.
package wavio

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

var ErrInvalidWAV = errors.New("invalid WAV file")

// Clip is decoded stereo audio. Frame values are scaled to the signed 16-bit
// range regardless of the source bit depth.
type Clip struct {
	SampleRate int
	Frames     [][2]float64
}

// Decode reads a PCM WAV stream. Mono is duplicated to both channels and only
// the first two channels of wider files are kept.
func Decode(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if dec.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("%w: audio format %d is not integer PCM", ErrInvalidWAV, dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode pcm: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidWAV)
	}
	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = buf.SourceBitDepth
	}
	if depth == 0 {
		return nil, fmt.Errorf("%w: unknown bit depth", ErrInvalidWAV)
	}
	nch := buf.Format.NumChannels
	nframes := len(buf.Data) / nch
	frames := make([][2]float64, nframes)
	for i := 0; i < nframes; i++ {
		l := to16(buf.Data[i*nch], depth)
		r := l
		if nch > 1 {
			r = to16(buf.Data[i*nch+1], depth)
		}
		frames[i] = [2]float64{l, r}
	}
	return &Clip{SampleRate: buf.Format.SampleRate, Frames: frames}, nil
}

func to16(v int, depth int) float64 {
	switch {
	case depth == 8:
		// 8-bit WAV is unsigned
		return float64(v-128) * 256
	case depth == 16:
		return float64(v)
	default:
		return float64(v) * 32768 / float64(int64(1)<<(depth-1))
	}
}

// Encode16 writes interleaved signed 16-bit samples as a PCM WAV.
func Encode16(w io.WriteSeeker, sampleRate int, channels int, samples []int16) error {
	if sampleRate <= 0 || channels <= 0 {
		return errors.New("sampleRate and channels must be positive")
	}
	enc := wav.NewEncoder(w, sampleRate, 16, channels, pcmFormat)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
