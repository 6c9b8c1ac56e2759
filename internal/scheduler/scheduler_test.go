package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cbegin/pianoduet-go/internal/samples"
	"github.com/cbegin/pianoduet-go/internal/score"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

type fakeVoice struct {
	clock   *fakeClock
	name    string
	started time.Time
	length  time.Duration
	maxDur  time.Duration
	volumes []float64
	stopped bool
}

func (v *fakeVoice) SetVolume(g float64) { v.volumes = append(v.volumes, g) }
func (v *fakeVoice) Stop()               { v.stopped = true }
func (v *fakeVoice) IsBusy() bool {
	return !v.stopped && v.clock.Now().Sub(v.started) < v.length
}

// fakeBackend ignores the duration cap so the scheduler must enforce it.
type fakeBackend struct {
	clock  *fakeClock
	voices []*fakeVoice
	full   bool
}

func (b *fakeBackend) Play(s *samples.Sample, maxDuration time.Duration) Voice {
	if b.full {
		return nil
	}
	v := &fakeVoice{
		clock:   b.clock,
		name:    s.Name,
		started: b.clock.Now(),
		length:  time.Duration(len(s.Frames)) * time.Second / samples.DefaultSampleRate,
		maxDur:  maxDuration,
	}
	b.voices = append(b.voices, v)
	return v
}

type stubResolver map[score.Pitch]*samples.Sample

func (r stubResolver) Resolve(p score.Pitch) *samples.Sample {
	if s, ok := r[p]; ok {
		return s
	}
	return &samples.Sample{Frames: make([][2]float64, samples.DefaultSampleRate)}
}

func sample(name string, secs float64) *samples.Sample {
	return &samples.Sample{Name: name, Frames: make([][2]float64, int(secs*samples.DefaultSampleRate)), Audible: true}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testResolver() stubResolver {
	return stubResolver{
		1: sample("C4", 0.3),
		2: sample("D4", 0.3),
		3: sample("E4", 0.3),
		4: sample("F4", 0.3),
		9: {Name: "D5", Frames: make([][2]float64, 100)},
	}
}

func testPart() score.HandPart {
	return score.HandPart{
		Name:   "right",
		Events: []score.NoteEvent{score.Single(1), score.Chord(2, 3), score.Rest(), score.Single(4), score.Single(9)},
		Beats:  []float64{1, 1, 1, 1, 1},
		Volume: 0.7,
	}
}

func TestRunTriggersInOrderAtOnsets(t *testing.T) {
	for _, timing := range []Timing{TimingAbsolute, TimingSequential} {
		t.Run(timing.String(), func(t *testing.T) {
			clock := newFakeClock()
			backend := &fakeBackend{clock: clock}
			params := DefaultParams()
			params.Timing = timing
			var triggers []Trigger
			s := New(backend, testResolver(), params,
				WithClock(clock), WithLogger(quietLogger()),
				WithOnTrigger(func(tr Trigger) { triggers = append(triggers, tr) }))
			start := clock.Now()
			if err := s.Run(context.Background(), testPart(), 120); err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(backend.voices) != 4 {
				t.Fatalf("voices = %d, want 4 (rest and inaudible skipped)", len(backend.voices))
			}
			wantOnsets := []time.Duration{0, 500 * time.Millisecond, 500 * time.Millisecond, 1500 * time.Millisecond}
			wantNames := []string{"C4", "D4", "E4", "F4"}
			for i, v := range backend.voices {
				if got := v.started.Sub(start); got != wantOnsets[i] {
					t.Fatalf("voice %d onset = %v, want %v", i, got, wantOnsets[i])
				}
				if v.name != wantNames[i] {
					t.Fatalf("voice %d = %s, want %s", i, v.name, wantNames[i])
				}
				if len(v.volumes) == 0 || v.volumes[0] != 0.7 {
					t.Fatalf("voice %d volume = %v, want 0.7", i, v.volumes)
				}
				if v.maxDur != 2500*time.Millisecond {
					t.Fatalf("max duration = %v, want measure + decay", v.maxDur)
				}
			}
			if len(triggers) != 4 {
				t.Fatalf("triggers = %d, want 4", len(triggers))
			}
			for i := 1; i < len(triggers); i++ {
				if triggers[i].Offset < triggers[i-1].Offset || triggers[i].Index <= triggers[i-1].Index {
					t.Fatalf("triggers out of order: %+v", triggers)
				}
			}
		})
	}
}

func TestRunFadesAndStopsLongVoices(t *testing.T) {
	clock := newFakeClock()
	backend := &fakeBackend{clock: clock}
	res := stubResolver{1: sample("C4", 10)}
	part := score.HandPart{Name: "left", Events: []score.NoteEvent{score.Single(1)}, Beats: []float64{1}, Volume: 0.5}
	s := New(backend, res, DefaultParams(), WithClock(clock), WithLogger(quietLogger()))
	start := clock.Now()
	if err := s.Run(context.Background(), part, 120); err != nil {
		t.Fatalf("run: %v", err)
	}
	v := backend.voices[0]
	if !v.stopped {
		t.Fatalf("voice outliving its cap should be stopped")
	}
	if end := clock.Now().Sub(start); end < 2500*time.Millisecond || end > 2600*time.Millisecond {
		t.Fatalf("release ended at %v, want about 2.5s", end)
	}
	if len(v.volumes) < 3 {
		t.Fatalf("expected a fade ramp, volumes = %v", v.volumes)
	}
	for i := 2; i < len(v.volumes); i++ {
		if v.volumes[i] > v.volumes[i-1] {
			t.Fatalf("fade must not increase: %v", v.volumes)
		}
	}
	if last := v.volumes[len(v.volumes)-1]; last >= 0.5*0.2 {
		t.Fatalf("last gain %v should be near zero", last)
	}
}

func TestRunShortVoicesEndWithoutStop(t *testing.T) {
	clock := newFakeClock()
	backend := &fakeBackend{clock: clock}
	s := New(backend, testResolver(), DefaultParams(), WithClock(clock), WithLogger(quietLogger()))
	if err := s.Run(context.Background(), testPart(), 120); err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, v := range backend.voices {
		if v.stopped {
			t.Fatalf("voice %d finished naturally and should not be stopped", i)
		}
		if len(v.volumes) != 1 {
			t.Fatalf("voice %d faded though it ended early: %v", i, v.volumes)
		}
	}
}

func TestRunCancelStopsVoices(t *testing.T) {
	clock := newFakeClock()
	backend := &fakeBackend{clock: clock}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res := stubResolver{1: sample("C4", 10), 2: sample("D4", 10)}
	part := score.HandPart{
		Name:   "right",
		Events: []score.NoteEvent{score.Single(1), score.Single(2), score.Single(1), score.Single(2)},
		Beats:  []float64{1, 1, 1, 1},
		Volume: 1,
	}
	s := New(backend, res, DefaultParams(), WithClock(clock), WithLogger(quietLogger()),
		WithOnTrigger(func(tr Trigger) {
			if tr.Index == 1 {
				cancel()
			}
		}))
	err := s.Run(ctx, part, 120)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(backend.voices) != 2 {
		t.Fatalf("voices = %d, want 2 before cancellation", len(backend.voices))
	}
	for i, v := range backend.voices {
		if !v.stopped {
			t.Fatalf("voice %d still sounding after cancel", i)
		}
	}
}

func TestRunWithoutFreeVoices(t *testing.T) {
	clock := newFakeClock()
	backend := &fakeBackend{clock: clock, full: true}
	s := New(backend, testResolver(), DefaultParams(), WithClock(clock), WithLogger(quietLogger()))
	if err := s.Run(context.Background(), testPart(), 120); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestMaxDurationOverride(t *testing.T) {
	p := DefaultParams()
	s := New(&fakeBackend{}, testResolver(), p)
	if got := s.MaxDuration(60); got != 4500*time.Millisecond {
		t.Fatalf("default cap = %v, want 4.5s", got)
	}
	p.MaxDuration = time.Second
	s = New(&fakeBackend{}, testResolver(), p)
	if got := s.MaxDuration(60); got != time.Second {
		t.Fatalf("override cap = %v, want 1s", got)
	}
}

func TestRunCancelledBeforeStartTriggersNothing(t *testing.T) {
	for _, timing := range []Timing{TimingAbsolute, TimingSequential} {
		t.Run(timing.String(), func(t *testing.T) {
			clock := newFakeClock()
			backend := &fakeBackend{clock: clock}
			params := DefaultParams()
			params.Timing = timing
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			part := score.HandPart{
				Name:   "right",
				Events: []score.NoteEvent{score.Single(1), score.Single(2)},
				Beats:  []float64{1, 1},
				Volume: 0.7,
			}
			s := New(backend, testResolver(), params, WithClock(clock), WithLogger(quietLogger()))
			if err := s.Run(ctx, part, 120); !errors.Is(err, context.Canceled) {
				t.Fatalf("err = %v, want context.Canceled", err)
			}
			if len(backend.voices) != 0 {
				t.Fatalf("voices started after cancel = %d, want 0", len(backend.voices))
			}
		})
	}
}
