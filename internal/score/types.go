package score

import "sort"

// Pitch is a scale-degree index. Zero is a rest.
type Pitch int

const RestPitch Pitch = 0

type EventKind int

const (
	EventRest EventKind = iota
	EventSingle
	EventChord
)

// NoteEvent is one onset in a hand part: a rest, a single pitch or a chord.
type NoteEvent struct {
	Kind    EventKind
	Pitches []Pitch
}

func Rest() NoteEvent {
	return NoteEvent{Kind: EventRest}
}

// Single returns a one-pitch event. Single(0) is a rest.
func Single(p Pitch) NoteEvent {
	if p == RestPitch {
		return Rest()
	}
	return NoteEvent{Kind: EventSingle, Pitches: []Pitch{p}}
}

// Chord returns a chord event. Duplicate pitches are collapsed; order is not
// significant.
func Chord(pitches ...Pitch) NoteEvent {
	seen := make(map[Pitch]struct{}, len(pitches))
	out := make([]Pitch, 0, len(pitches))
	for _, p := range pitches {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return NoteEvent{Kind: EventChord, Pitches: out}
}

// Sounding returns the nonzero pitches of the event. It is empty for rests and
// all-zero chords.
func (e NoteEvent) Sounding() []Pitch {
	if e.Kind == EventRest {
		return nil
	}
	var out []Pitch
	for _, p := range e.Pitches {
		if p != RestPitch {
			out = append(out, p)
		}
	}
	return out
}

func (e NoteEvent) IsRest() bool {
	return len(e.Sounding()) == 0
}

// Tempo is in quarter-note beats per minute.
type Tempo float64

// Quarter returns the length of one quarter note in seconds.
func (t Tempo) Quarter() float64 {
	return 60 / float64(t)
}

// Measure returns the length of one 4/4 measure in seconds.
func (t Tempo) Measure() float64 {
	return 4 * t.Quarter()
}

// BeatsPerMeasure is fixed; every score is in 4/4.
const BeatsPerMeasure = 4.0

type HandPart struct {
	Name   string
	Events []NoteEvent
	Beats  []float64
	Volume float64
}

// TotalBeats sums the part's beat durations.
func (h HandPart) TotalBeats() float64 {
	var sum float64
	for _, b := range h.Beats {
		sum += b
	}
	return sum
}

type Score struct {
	Title string
	Tempo Tempo
	Right HandPart
	Left  HandPart
}

// Hands returns the right and left parts in that order.
func (s *Score) Hands() []HandPart {
	return []HandPart{s.Right, s.Left}
}
