// Package audio plays preloaded samples through the ebiten audio context.
package audio

import (
	"fmt"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/cbegin/pianoduet-go/internal/samples"
	"github.com/cbegin/pianoduet-go/internal/scheduler"
)

// DefaultMaxVoices matches the channel count of a typical software mixer.
const DefaultMaxVoices = 50

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// ebiten allows a single context per process.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

type cacheKey struct {
	sample *samples.Sample
	frames int
}

// Device is a voice backend for the live scheduler. It is safe for use by
// both hands at once.
type Device struct {
	ctx        *ebitaudio.Context
	sampleRate int

	mu        sync.Mutex
	maxVoices int
	voices    []*voice
	pcm       map[cacheKey][]byte
}

// Open returns a device on the process-wide audio context. Every call must
// use the same sample rate.
func Open(sampleRate int) (*Device, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Device{
		ctx:        ctx,
		sampleRate: sampleRate,
		maxVoices:  DefaultMaxVoices,
		pcm:        make(map[cacheKey][]byte),
	}, nil
}

// SetMaxVoices caps the number of voices sounding at once. n <= 0 removes
// the cap.
func (d *Device) SetMaxVoices(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxVoices = n
}

func (d *Device) SampleRate() int { return d.sampleRate }

// Play starts s truncated to maxDuration. It returns nil when every voice is
// in use or the sample is empty.
func (d *Device) Play(s *samples.Sample, maxDuration time.Duration) scheduler.Voice {
	limit := len(s.Frames)
	if maxDuration > 0 {
		if n := int(maxDuration.Seconds() * float64(d.sampleRate)); n < limit {
			limit = n
		}
	}
	if limit <= 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.reapLocked()
	if d.maxVoices > 0 && len(d.voices) >= d.maxVoices {
		return nil
	}
	key := cacheKey{sample: s, frames: limit}
	buf, ok := d.pcm[key]
	if !ok {
		buf = PCM16(s.Frames[:limit])
		d.pcm[key] = buf
	}
	v := &voice{player: d.ctx.NewPlayerFromBytes(buf)}
	v.player.Play()
	d.voices = append(d.voices, v)
	return v
}

// reapLocked closes players that have finished on their own.
func (d *Device) reapLocked() {
	kept := d.voices[:0]
	for _, v := range d.voices {
		if v.IsBusy() {
			kept = append(kept, v)
			continue
		}
		v.Stop()
	}
	for i := len(kept); i < len(d.voices); i++ {
		d.voices[i] = nil
	}
	d.voices = kept
}

// Active returns the number of voices still sounding.
func (d *Device) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reapLocked()
	return len(d.voices)
}

// Close silences every voice and drops the PCM cache. The shared context
// stays alive for later devices.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, v := range d.voices {
		v.Stop()
	}
	d.voices = nil
	d.pcm = make(map[cacheKey][]byte)
	return nil
}
