package compositor

import (
	"math"
	"testing"

	"github.com/cbegin/pianoduet-go/internal/samples"
	"github.com/cbegin/pianoduet-go/internal/score"
)

// constResolver maps each pitch to a constant-valued sample.
type constResolver struct {
	levels map[score.Pitch]float64
	frames int
}

func (r constResolver) Resolve(p score.Pitch) *samples.Sample {
	lvl, ok := r.levels[p]
	if p == 0 || !ok {
		return &samples.Sample{Frames: make([][2]float64, samples.DefaultSampleRate)}
	}
	fr := make([][2]float64, r.frames)
	for i := range fr {
		fr[i] = [2]float64{lvl, lvl}
	}
	return &samples.Sample{Name: "x", Frames: fr, Audible: true}
}

func hand(volume float64, events []score.NoteEvent, beats ...float64) score.HandPart {
	return score.HandPart{Name: "right", Events: events, Beats: beats, Volume: volume}
}

func TestRenderRestThenNote(t *testing.T) {
	c := New(constResolver{levels: map[score.Pitch]float64{4: 1000}, frames: 3 * 44100}, DefaultParams())
	part := hand(1, []score.NoteEvent{score.Rest(), score.Single(4)}, 1, 1)
	out := c.Render(part, 120)
	if len(out) != 44100 {
		t.Fatalf("len = %d, want 44100", len(out))
	}
	for i := 0; i < 22050; i++ {
		if out[i] != [2]float64{} {
			t.Fatalf("frame %d = %v during rest", i, out[i])
		}
	}
	fade := int(0.05 * 44100)
	if out[22050+fade][0] != 1000 {
		t.Fatalf("frame after fade-in = %v, want 1000", out[22050+fade])
	}
	for i := 22050 + 1; i < 44100; i++ {
		if out[i][0] == 0 {
			t.Fatalf("frame %d silent after onset", i)
		}
	}
}

func TestRenderSustainOverlapsNextNote(t *testing.T) {
	const sr = 44100
	aLen := 2*sr + 500
	c := New(constResolver{levels: map[score.Pitch]float64{1: 1000, 2: 10}, frames: aLen}, DefaultParams())
	part := hand(0.5, []score.NoteEvent{score.Single(1), score.Single(2)}, 1, 1)
	out := c.Render(part, 60)
	if len(out) != 2*sr {
		t.Fatalf("len = %d, want %d", len(out), 2*sr)
	}
	fade := int(0.05 * sr)
	// A rings under B from B's onset until the buffer ends.
	want := min(aLen, 3*sr-sr)
	if want > len(out)-sr {
		want = len(out) - sr
	}
	for i := sr + fade; i < sr+want; i++ {
		if got := out[i][0]; math.Abs(got-505) > 1e-9 {
			t.Fatalf("frame %d = %v, want A+B = 505", i, got)
		}
	}
}

func TestRenderChordAccumulates(t *testing.T) {
	c := New(constResolver{levels: map[score.Pitch]float64{1: 100, 3: 200, 5: 300}, frames: 44100}, DefaultParams())
	part := hand(1, []score.NoteEvent{score.Chord(1, 3, 5)}, 2)
	out := c.Render(part, 120)
	if got := out[len(out)-1][1]; got != 600 {
		t.Fatalf("chord frame = %v, want 600", got)
	}
}

func TestRenderTapersMeasureBoundary(t *testing.T) {
	c := New(constResolver{levels: map[score.Pitch]float64{1: 1000}, frames: 10 * 44100}, DefaultParams())
	events := []score.NoteEvent{score.Single(1), score.Rest(), score.Rest(), score.Rest(), score.Single(1)}
	out := c.Render(hand(1, events, 1, 1, 1, 1, 1), 120)
	boundary := 4 * 22050
	if got := out[boundary-1][0]; math.Abs(got) > 1e-9 {
		t.Fatalf("last frame before boundary = %v, want ~0", got)
	}
	fade := int(0.05 * 44100)
	if got := out[boundary-fade-1][0]; got != 1000 {
		t.Fatalf("frame before taper = %v, want 1000", got)
	}
	if got := out[boundary-fade/2][0]; got <= 0 || got >= 1000 {
		t.Fatalf("mid-taper frame = %v", got)
	}
}

func TestRenderSilentScore(t *testing.T) {
	c := New(constResolver{levels: map[score.Pitch]float64{1: 1000}, frames: 44100}, DefaultParams())
	events := []score.NoteEvent{score.Rest(), score.Chord(0, 0), score.Single(0)}
	out := c.Render(hand(1, events, 1, 2, 1), 100)
	if len(out) != c.Frames(hand(1, events, 1, 2, 1), 100) {
		t.Fatalf("len = %d", len(out))
	}
	for i, f := range out {
		if f != [2]float64{} {
			t.Fatalf("frame %d = %v, want silence", i, f)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	repo := samples.Synthesize(score.DefaultPitchTable())
	c := New(repo, DefaultParams())
	part := hand(0.7,
		[]score.NoteEvent{score.Chord(12, 19), score.Single(11), score.Single(99), score.Chord(7, 12, 16)},
		1.5, 1.5, 0.5, 2.5)
	a := c.Render(part, 140)
	b := c.Render(part, 140)
	if len(a) != len(b) {
		t.Fatalf("lengths differ")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRenderClampsAtBufferEnd(t *testing.T) {
	c := New(constResolver{levels: map[score.Pitch]float64{1: 1}, frames: 5 * 44100}, DefaultParams())
	out := c.Render(hand(1, []score.NoteEvent{score.Single(1)}, 0.5), 120)
	if len(out) != 11025 {
		t.Fatalf("len = %d, want 11025", len(out))
	}
}

func TestFadeCurves(t *testing.T) {
	in, out := fadeIn(5), fadeOut(5)
	if in[0] != 0 || math.Abs(in[4]-1) > 1e-12 {
		t.Fatalf("fade-in ends = %v, %v", in[0], in[4])
	}
	if out[0] != 1 || math.Abs(out[4]) > 1e-12 {
		t.Fatalf("fade-out ends = %v, %v", out[0], out[4])
	}
	for i := 1; i < 5; i++ {
		if in[i] < in[i-1] || out[i] > out[i-1] {
			t.Fatalf("curves must be monotonic")
		}
	}
}
