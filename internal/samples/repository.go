// Package samples maps pitches to preloaded piano samples.
package samples

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/cbegin/pianoduet-go/internal/score"
	"github.com/cbegin/pianoduet-go/internal/wavio"
)

const DefaultSampleRate = 44100

// Sample is one preloaded note. Frames are stereo, scaled to the signed
// 16-bit range. Silent placeholders are not Audible and carry sampleRate
// frames of zeros.
type Sample struct {
	Name    string
	Frames  [][2]float64
	Audible bool
}

// Repository is read-only after construction and safe for concurrent use.
type Repository struct {
	sampleRate int
	table      score.PitchTable
	byName     map[string]*Sample
	silence    *Sample
	logger     *slog.Logger
}

type Option func(*config)

type config struct {
	sampleRate int
	logger     *slog.Logger
}

func WithSampleRate(sampleRate int) Option {
	return func(c *config) {
		if sampleRate > 0 {
			c.sampleRate = sampleRate
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{sampleRate: DefaultSampleRate, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func newRepository(table score.PitchTable, cfg config) *Repository {
	return &Repository{
		sampleRate: cfg.sampleRate,
		table:      table,
		byName:     make(map[string]*Sample, len(table)),
		silence:    silentSample("", cfg.sampleRate),
		logger:     cfg.logger,
	}
}

func silentSample(name string, sampleRate int) *Sample {
	return &Sample{Name: name, Frames: make([][2]float64, sampleRate)}
}

// Load reads <name>.wav from fsys for every name in table. A missing or
// unreadable asset is logged once and replaced by a silent placeholder.
func Load(fsys fs.FS, table score.PitchTable, opts ...Option) *Repository {
	cfg := newConfig(opts)
	r := newRepository(table, cfg)
	for _, name := range table.Names() {
		s, err := r.loadAsset(fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				r.logger.Warn("sample asset missing, note will be silent", "note", name)
			} else {
				r.logger.Warn("sample asset unreadable, note will be silent", "note", name, "error", err)
			}
			s = silentSample(name, r.sampleRate)
		}
		r.byName[name] = s
	}
	return r
}

func (r *Repository) loadAsset(fsys fs.FS, name string) (*Sample, error) {
	if fsys == nil {
		return nil, fs.ErrNotExist
	}
	data, err := fs.ReadFile(fsys, name+".wav")
	if err != nil {
		return nil, err
	}
	clip, err := wavio.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	frames := clip.Frames
	if clip.SampleRate != r.sampleRate {
		r.logger.Debug("resampling sample asset", "note", name, "from", clip.SampleRate, "to", r.sampleRate)
		frames, err = resample(frames, clip.SampleRate, r.sampleRate)
		if err != nil {
			return nil, err
		}
	}
	return &Sample{Name: name, Frames: frames, Audible: true}, nil
}

// Resolve returns the sample for p. Rests and unmapped pitches resolve to
// silence; an unmapped nonzero pitch is logged on every call.
func (r *Repository) Resolve(p score.Pitch) *Sample {
	if p == score.RestPitch {
		return r.silence
	}
	name, ok := r.table.Name(p)
	if !ok {
		r.logger.Warn("unmapped pitch rendered as rest", "pitch", int(p))
		return r.silence
	}
	if s, ok := r.byName[name]; ok {
		return s
	}
	return r.silence
}

func (r *Repository) SampleRate() int {
	return r.sampleRate
}

// Missing returns the names that fell back to silence.
func (r *Repository) Missing() []string {
	var out []string
	for _, name := range r.table.Names() {
		if s, ok := r.byName[name]; ok && !s.Audible {
			out = append(out, name)
		}
	}
	return out
}
