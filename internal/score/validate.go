package score

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedScore is wrapped by every Validate failure.
var ErrMalformedScore = errors.New("malformed score")

// Validate rejects scores that cannot be scheduled or rendered.
func (s *Score) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil score", ErrMalformedScore)
	}
	if !(s.Tempo > 0) || math.IsInf(float64(s.Tempo), 0) {
		return fmt.Errorf("%w: tempo must be positive, got %v", ErrMalformedScore, float64(s.Tempo))
	}
	for _, h := range s.Hands() {
		if err := h.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (h HandPart) Validate() error {
	name := h.Name
	if name == "" {
		name = "hand"
	}
	if len(h.Events) != len(h.Beats) {
		return fmt.Errorf("%w: %s has %d events but %d beats", ErrMalformedScore, name, len(h.Events), len(h.Beats))
	}
	for i, b := range h.Beats {
		if !(b > 0) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: %s beat %d must be positive, got %v", ErrMalformedScore, name, i, b)
		}
	}
	if h.Volume < 0 || h.Volume > 1 || math.IsNaN(h.Volume) {
		return fmt.Errorf("%w: %s volume %v outside [0,1]", ErrMalformedScore, name, h.Volume)
	}
	return nil
}
