package score

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRightVolume = 0.7
	DefaultLeftVolume  = 0.5
)

// UnmarshalYAML accepts a scalar pitch or a sequence of pitches (a chord).
func (e *NoteEvent) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var p int
		if err := node.Decode(&p); err != nil {
			return fmt.Errorf("line %d: note must be an integer pitch: %w", node.Line, err)
		}
		*e = Single(Pitch(p))
		return nil
	case yaml.SequenceNode:
		var ps []int
		if err := node.Decode(&ps); err != nil {
			return fmt.Errorf("line %d: chord must be a list of integer pitches: %w", node.Line, err)
		}
		pitches := make([]Pitch, len(ps))
		for i, p := range ps {
			pitches[i] = Pitch(p)
		}
		*e = Chord(pitches...)
		return nil
	}
	return fmt.Errorf("line %d: unsupported note value", node.Line)
}

func (e NoteEvent) MarshalYAML() (interface{}, error) {
	switch e.Kind {
	case EventRest:
		return 0, nil
	case EventSingle:
		if len(e.Pitches) == 1 {
			return int(e.Pitches[0]), nil
		}
	}
	out := make([]int, len(e.Pitches))
	for i, p := range e.Pitches {
		out[i] = int(p)
	}
	return out, nil
}

type sheetHand struct {
	Volume *float64    `yaml:"volume,omitempty"`
	Notes  []NoteEvent `yaml:"notes,flow"`
	Beats  []float64   `yaml:"beats,flow"`
}

type sheet struct {
	Title string    `yaml:"title,omitempty"`
	Tempo float64   `yaml:"tempo"`
	Right sheetHand `yaml:"right"`
	Left  sheetHand `yaml:"left"`
}

// ParseSheet decodes a YAML sheet and validates it. Hands without a volume get
// DefaultRightVolume and DefaultLeftVolume.
func ParseSheet(data []byte) (*Score, error) {
	var sh sheet
	if err := yaml.Unmarshal(data, &sh); err != nil {
		return nil, fmt.Errorf("parse sheet: %w", err)
	}
	sc := &Score{
		Title: sh.Title,
		Tempo: Tempo(sh.Tempo),
		Right: sh.Right.part("right", DefaultRightVolume),
		Left:  sh.Left.part("left", DefaultLeftVolume),
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (h sheetHand) part(name string, defVolume float64) HandPart {
	vol := defVolume
	if h.Volume != nil {
		vol = *h.Volume
	}
	return HandPart{Name: name, Events: h.Notes, Beats: h.Beats, Volume: vol}
}

// MarshalSheet encodes a score in the format ParseSheet reads.
func MarshalSheet(s *Score) ([]byte, error) {
	rv, lv := s.Right.Volume, s.Left.Volume
	sh := sheet{
		Title: s.Title,
		Tempo: float64(s.Tempo),
		Right: sheetHand{Volume: &rv, Notes: s.Right.Events, Beats: s.Right.Beats},
		Left:  sheetHand{Volume: &lv, Notes: s.Left.Events, Beats: s.Left.Beats},
	}
	return yaml.Marshal(sh)
}
