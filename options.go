package pianoduet

import (
	"log/slog"
	"time"

	"github.com/cbegin/pianoduet-go/internal/audio"
	"github.com/cbegin/pianoduet-go/internal/compositor"
	"github.com/cbegin/pianoduet-go/internal/mixer"
	"github.com/cbegin/pianoduet-go/internal/samples"
	"github.com/cbegin/pianoduet-go/internal/scheduler"
	"github.com/cbegin/pianoduet-go/internal/score"
)

// Timing selects how live playback waits between notes.
type Timing = scheduler.Timing

const (
	TimingAbsolute   = scheduler.TimingAbsolute
	TimingSequential = scheduler.TimingSequential
)

// Resolver maps a pitch to its sample. Rests and unmapped pitches resolve to
// silence.
type Resolver interface {
	Resolve(p score.Pitch) *samples.Sample
}

// Params collects every tunable of rendering and playback.
type Params struct {
	SampleRate int
	// DecayTime is added to one measure to cap a live voice's lifetime.
	DecayTime time.Duration
	// FadeTime is the raised-cosine ramp length of offline note onsets and
	// measure tapers.
	FadeTime time.Duration
	// Headroom is the normalized peak as a fraction of full scale.
	Headroom         float64
	LimiterThreshold float64
	Limit            bool
	Timing           Timing
	// MaxDuration overrides the live voice lifetime cap when positive.
	MaxDuration     time.Duration
	PollInterval    time.Duration
	ReleaseInterval time.Duration
	MaxVoices       int
}

func DefaultParams() Params {
	sp := scheduler.DefaultParams()
	mp := mixer.DefaultParams()
	cp := compositor.DefaultParams()
	return Params{
		SampleRate:       cp.SampleRate,
		DecayTime:        sp.DecayTime,
		FadeTime:         cp.FadeTime,
		Headroom:         mp.Headroom,
		LimiterThreshold: mp.Threshold,
		Limit:            mp.Limit,
		Timing:           sp.Timing,
		PollInterval:     sp.PollInterval,
		ReleaseInterval:  sp.ReleaseInterval,
		MaxVoices:        audio.DefaultMaxVoices,
	}
}

func (p Params) compositorParams() compositor.Params {
	return compositor.Params{SampleRate: p.SampleRate, FadeTime: p.FadeTime}
}

func (p Params) mixerParams() mixer.Params {
	return mixer.Params{Headroom: p.Headroom, Threshold: p.LimiterThreshold, Limit: p.Limit}
}

func (p Params) schedulerParams() scheduler.Params {
	return scheduler.Params{
		Timing:          p.Timing,
		DecayTime:       p.DecayTime,
		MaxDuration:     p.MaxDuration,
		PollInterval:    p.PollInterval,
		ReleaseInterval: p.ReleaseInterval,
	}
}

type Option func(*config)

type config struct {
	params  Params
	logger  *slog.Logger
	backend scheduler.Backend
	clock   scheduler.Clock
}

func newConfig(opts []Option) config {
	cfg := config{params: DefaultParams(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithParams replaces every parameter at once. Later options still apply.
func WithParams(p Params) Option {
	return func(cfg *config) {
		cfg.params = p
	}
}

func WithTiming(t Timing) Option {
	return func(cfg *config) {
		cfg.params.Timing = t
	}
}

// WithMaxDuration caps how long a live voice may sound. Zero restores the
// default of one measure plus the decay time.
func WithMaxDuration(d time.Duration) Option {
	return func(cfg *config) {
		cfg.params.MaxDuration = d
	}
}

func WithLimiter(enabled bool) Option {
	return func(cfg *config) {
		cfg.params.Limit = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithBackend plays live voices on b instead of the system audio device.
func WithBackend(b scheduler.Backend) Option {
	return func(cfg *config) {
		cfg.backend = b
	}
}

// WithClock drives live scheduling from c instead of the wall clock.
func WithClock(c scheduler.Clock) Option {
	return func(cfg *config) {
		cfg.clock = c
	}
}

// WithMaxVoices caps the voices the audio device plays at once. n <= 0
// removes the cap. It has no effect together with WithBackend.
func WithMaxVoices(n int) Option {
	return func(cfg *config) {
		cfg.params.MaxVoices = n
	}
}
