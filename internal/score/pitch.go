package score

import (
	"sort"
	"strconv"
)

// PitchTable maps pitches to sample names such as "C4".
type PitchTable map[Pitch]string

const (
	lowestDegree  Pitch = -14
	highestDegree Pitch = 28
	referenceOct        = 4
)

var degreeLetters = [7]string{"C", "D", "E", "F", "G", "A", "B"}

// DefaultPitchTable covers C2 (-14) through B7 (28) in C major. Degree 1 is C4,
// 8 is C5 and -1 is B3.
func DefaultPitchTable() PitchTable {
	t := make(PitchTable, int(highestDegree-lowestDegree))
	for p := lowestDegree; p <= highestDegree; p++ {
		if p == RestPitch {
			continue
		}
		t[p] = degreeName(p)
	}
	return t
}

func degreeName(p Pitch) string {
	idx := int(p)
	if idx > 0 {
		idx--
	}
	oct := referenceOct + floorDiv(idx, 7)
	return degreeLetters[idx-floorDiv(idx, 7)*7] + strconv.Itoa(oct)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Name returns the sample name for p.
func (t PitchTable) Name(p Pitch) (string, bool) {
	name, ok := t[p]
	return name, ok
}

// Names returns each distinct sample name once, ordered by pitch.
func (t PitchTable) Names() []string {
	pitches := make([]Pitch, 0, len(t))
	for p := range t {
		pitches = append(pitches, p)
	}
	sort.Slice(pitches, func(i, j int) bool { return pitches[i] < pitches[j] })
	out := make([]string, 0, len(t))
	seen := make(map[string]struct{}, len(t))
	for _, p := range pitches {
		name := t[p]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
