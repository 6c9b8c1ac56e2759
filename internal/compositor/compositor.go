// Package compositor renders one hand of a score into a stereo accumulation
// buffer. Rendering is deterministic and does not depend on wall-clock time.
package compositor

import (
	"time"

	"github.com/cbegin/pianoduet-go/internal/samples"
	"github.com/cbegin/pianoduet-go/internal/score"
)

// Resolver supplies PCM for a pitch. Rests and unknown pitches must resolve to
// silence rather than nil.
type Resolver interface {
	Resolve(p score.Pitch) *samples.Sample
}

type Params struct {
	SampleRate int
	FadeTime   time.Duration
}

func DefaultParams() Params {
	return Params{
		SampleRate: samples.DefaultSampleRate,
		FadeTime:   50 * time.Millisecond,
	}
}

type Compositor struct {
	repo       Resolver
	sampleRate int
	fadeFrames int
	fadeIn     []float64
	fadeOut    []float64
}

func New(repo Resolver, params Params) *Compositor {
	if params.SampleRate <= 0 {
		params.SampleRate = samples.DefaultSampleRate
	}
	fade := int(params.FadeTime.Seconds() * float64(params.SampleRate))
	if fade < 0 {
		fade = 0
	}
	return &Compositor{
		repo:       repo,
		sampleRate: params.SampleRate,
		fadeFrames: fade,
		fadeIn:     fadeIn(fade),
		fadeOut:    fadeOut(fade),
	}
}

// Frames returns the buffer length for a hand: its total beats at tempo.
func (c *Compositor) Frames(part score.HandPart, tempo score.Tempo) int {
	return int(part.TotalBeats() * tempo.Quarter() * float64(c.sampleRate))
}

// Render accumulates every note of part into a new buffer. Each note sustains
// for up to one measure from its onset, independent of its written length, so
// consecutive notes overlap. Crossing a measure boundary tapers the tail that
// precedes it.
func (c *Compositor) Render(part score.HandPart, tempo score.Tempo) [][2]float64 {
	total := c.Frames(part, tempo)
	out := make([][2]float64, total)
	quarter := tempo.Quarter()
	measureFrames := int(tempo.Measure() * float64(c.sampleRate))

	pos := 0
	measureBeats := 0.0
	n := len(part.Events)
	if len(part.Beats) < n {
		n = len(part.Beats)
	}
	for i := 0; i < n; i++ {
		beats := part.Beats[i]
		if !(beats > 0) {
			continue
		}
		sustain := measureFrames
		if rem := total - pos; rem < sustain {
			sustain = rem
		}
		if sustain > 0 {
			for _, p := range part.Events[i].Sounding() {
				c.addNote(out[pos:pos+sustain], c.repo.Resolve(p), part.Volume)
			}
		}

		pos += int(beats * quarter * float64(c.sampleRate))
		measureBeats += beats
		if measureBeats >= score.BeatsPerMeasure {
			measureBeats -= score.BeatsPerMeasure
			c.taperBefore(out, pos)
		}
	}
	return out
}

// addNote mixes s into seg, scaled by volume, with a fade-in when seg is longer
// than the fade. Frames past the end of the sample contribute nothing.
func (c *Compositor) addNote(seg [][2]float64, s *samples.Sample, volume float64) {
	if s == nil {
		return
	}
	src := s.Frames
	if len(src) > len(seg) {
		src = src[:len(seg)]
	}
	fade := len(seg) > c.fadeFrames
	for i, f := range src {
		g := volume
		if fade && i < c.fadeFrames {
			g *= c.fadeIn[i]
		}
		seg[i][0] += f[0] * g
		seg[i][1] += f[1] * g
	}
}

// taperBefore multiplies the fade frames ending at pos by the fade-out curve.
func (c *Compositor) taperBefore(buf [][2]float64, pos int) {
	if pos > len(buf) {
		pos = len(buf)
	}
	n := c.fadeFrames
	if pos < n {
		n = pos
	}
	if n <= 0 {
		return
	}
	curve := c.fadeOut
	if n < len(curve) {
		curve = fadeOut(n)
	}
	start := pos - n
	for i := 0; i < n; i++ {
		buf[start+i][0] *= curve[i]
		buf[start+i][1] *= curve[i]
	}
}
