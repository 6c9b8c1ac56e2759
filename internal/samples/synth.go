package samples

import (
	"math"

	"github.com/cbegin/pianoduet-go/internal/score"
)

// semitone offsets of the C-major letters from C
var letterSemitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// partials of the synthesized tone: frequency ratio, amplitude, decay rate
var partials = [...][3]float64{
	{1, 1.0, 1.0},
	{2, 0.7, 1.2},
	{3, 0.45, 1.5},
	{4, 0.3, 1.8},
	{5, 0.2, 2.2},
	{6, 0.12, 2.6},
	{7, 0.08, 3.0},
	{8, 0.05, 3.5},
}

// synthSeconds is the length of every synthesized note.
const synthSeconds = 3.0

// Synthesize builds a repository of piano-like tones for every name in table,
// for use when no sample directory is available.
func Synthesize(table score.PitchTable, opts ...Option) *Repository {
	cfg := newConfig(opts)
	r := newRepository(table, cfg)
	for _, name := range table.Names() {
		freq, ok := noteFrequency(name)
		if !ok {
			r.logger.Warn("cannot synthesize note, it will be silent", "note", name)
			r.byName[name] = silentSample(name, r.sampleRate)
			continue
		}
		r.byName[name] = &Sample{Name: name, Frames: pianoTone(freq, r.sampleRate), Audible: true}
	}
	return r
}

// noteFrequency parses names like "C4" or "F#3" (A4 = 440 Hz).
func noteFrequency(name string) (float64, bool) {
	if len(name) < 2 {
		return 0, false
	}
	semi, ok := letterSemitones[name[0]]
	if !ok {
		return 0, false
	}
	rest := name[1:]
	switch rest[0] {
	case '#':
		semi++
		rest = rest[1:]
	case 'b':
		semi--
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return 0, false
	}
	oct := 0
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		oct = oct*10 + int(c-'0')
	}
	midi := (oct+1)*12 + semi
	return 440 * math.Pow(2, float64(midi-69)/12), true
}

func pianoTone(freq float64, sampleRate int) [][2]float64 {
	n := int(synthSeconds * float64(sampleRate))
	out := make([][2]float64, n)
	inharm := 0.0001 * (freq / 440) * (freq / 440)
	attack := 0.003
	for i := range out {
		t := float64(i) / float64(sampleRate)
		progress := t / synthSeconds
		var v float64
		for _, p := range partials {
			ratio := p[0] * math.Sqrt(1+inharm*p[0]*p[0])
			if freq*ratio >= float64(sampleRate)/2 {
				continue
			}
			v += p[1] * math.Exp(-progress*p[2]*3) * math.Sin(2*math.Pi*freq*ratio*t)
		}
		v /= 2.5
		env := math.Exp(-1.5 * t)
		if t < attack {
			env *= 1 - math.Exp(-5*t/attack)
		}
		s := v * env * 32767 * 0.85
		out[i] = [2]float64{s, s}
	}
	return out
}
