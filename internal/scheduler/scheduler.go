// Package scheduler plays one hand of a score in real time against a voice
// backend.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cbegin/pianoduet-go/internal/samples"
	"github.com/cbegin/pianoduet-go/internal/score"
)

// Voice is one sounding sample instance.
type Voice interface {
	SetVolume(gain float64)
	IsBusy() bool
	Stop()
}

// Backend starts a sample capped at maxDuration. It returns nil when no voice
// could be started.
type Backend interface {
	Play(s *samples.Sample, maxDuration time.Duration) Voice
}

type Resolver interface {
	Resolve(p score.Pitch) *samples.Sample
}

// Timing selects how the scheduler waits between notes.
type Timing int

const (
	// TimingAbsolute polls until the wall clock reaches each note's onset,
	// the running sum of the durations before it.
	TimingAbsolute Timing = iota
	// TimingSequential sleeps for each note's duration after triggering it.
	TimingSequential
)

func (t Timing) String() string {
	switch t {
	case TimingAbsolute:
		return "absolute"
	case TimingSequential:
		return "sequential"
	}
	return "unknown"
}

type Params struct {
	Timing    Timing
	DecayTime time.Duration
	// MaxDuration caps how long a voice may sound. Zero means one measure
	// plus DecayTime.
	MaxDuration time.Duration
	// FadeWindow is the tail of a voice's lifetime over which its gain ramps
	// to zero after the last note. Zero means DecayTime.
	FadeWindow      time.Duration
	PollInterval    time.Duration
	ReleaseInterval time.Duration
}

func DefaultParams() Params {
	return Params{
		Timing:          TimingAbsolute,
		DecayTime:       500 * time.Millisecond,
		PollInterval:    time.Millisecond,
		ReleaseInterval: 50 * time.Millisecond,
	}
}

// Trigger describes a note onset passed to the OnTrigger callback.
type Trigger struct {
	Hand    string
	Index   int
	Pitches []score.Pitch
	Offset  time.Duration
}

type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnTrigger installs a callback run on the scheduling goroutine after each
// onset is triggered.
func WithOnTrigger(fn func(Trigger)) Option {
	return func(s *Scheduler) {
		s.onTrigger = fn
	}
}

type Scheduler struct {
	backend   Backend
	repo      Resolver
	params    Params
	clock     Clock
	logger    *slog.Logger
	onTrigger func(Trigger)
}

func New(backend Backend, repo Resolver, params Params, opts ...Option) *Scheduler {
	def := DefaultParams()
	if params.PollInterval <= 0 {
		params.PollInterval = def.PollInterval
	}
	if params.ReleaseInterval <= 0 {
		params.ReleaseInterval = def.ReleaseInterval
	}
	if params.DecayTime < 0 {
		params.DecayTime = 0
	}
	s := &Scheduler{
		backend: backend,
		repo:    repo,
		params:  params,
		clock:   WallClock(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxDuration returns the voice lifetime cap for tempo.
func (s *Scheduler) MaxDuration(tempo score.Tempo) time.Duration {
	if s.params.MaxDuration > 0 {
		return s.params.MaxDuration
	}
	return seconds(tempo.Measure()) + s.params.DecayTime
}

func (s *Scheduler) fadeWindow() time.Duration {
	if s.params.FadeWindow > 0 {
		return s.params.FadeWindow
	}
	return s.params.DecayTime
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Run plays part to completion, including the release of its last voices.
// Onsets are triggered in score order. When ctx is cancelled every voice is
// stopped and ctx.Err() is returned.
func (s *Scheduler) Run(ctx context.Context, part score.HandPart, tempo score.Tempo) error {
	maxDur := s.MaxDuration(tempo)
	start := s.clock.Now()
	elapsed := func() time.Duration { return s.clock.Now().Sub(start) }

	vs := &voiceSet{}
	var next time.Duration
	n := len(part.Events)
	if len(part.Beats) < n {
		n = len(part.Beats)
	}
	for i := 0; i < n; i++ {
		dur := seconds(part.Beats[i] * tempo.Quarter())
		vs.prune(elapsed(), maxDur)

		if s.params.Timing == TimingAbsolute {
			for elapsed() < next {
				if err := s.clock.Sleep(ctx, s.params.PollInterval); err != nil {
					vs.stopAll()
					return err
				}
			}
		}
		if err := ctx.Err(); err != nil {
			vs.stopAll()
			return err
		}

		s.trigger(vs, part, i, elapsed(), maxDur)
		next += dur

		if s.params.Timing == TimingSequential {
			if err := s.clock.Sleep(ctx, dur); err != nil {
				vs.stopAll()
				return err
			}
		}
	}

	if err := s.release(ctx, vs, maxDur, elapsed, part.Volume); err != nil {
		return err
	}
	s.logger.Debug("hand finished", "hand", part.Name, "elapsed", elapsed())
	return nil
}

func (s *Scheduler) trigger(vs *voiceSet, part score.HandPart, index int, onset, maxDur time.Duration) {
	pitches := part.Events[index].Sounding()
	if len(pitches) == 0 {
		return
	}
	for _, p := range pitches {
		smp := s.repo.Resolve(p)
		if smp == nil || !smp.Audible {
			continue
		}
		v := s.backend.Play(smp, maxDur)
		if v == nil {
			s.logger.Debug("no voice available", "hand", part.Name, "note", smp.Name)
			continue
		}
		v.SetVolume(part.Volume)
		vs.add(v, onset)
	}
	if s.onTrigger != nil {
		s.onTrigger(Trigger{Hand: part.Name, Index: index, Pitches: pitches, Offset: onset})
	}
}

// release waits for the remaining voices to finish, fading each one out over
// the last part of its lifetime and stopping it when the lifetime expires.
func (s *Scheduler) release(ctx context.Context, vs *voiceSet, maxDur time.Duration, elapsed func() time.Duration, volume float64) error {
	window := s.fadeWindow()
	for {
		now := elapsed()
		vs.prune(now, maxDur)
		if vs.len() == 0 {
			return nil
		}
		vs.fade(now, maxDur, window, volume)
		if err := s.clock.Sleep(ctx, s.params.ReleaseInterval); err != nil {
			vs.stopAll()
			return err
		}
	}
}
