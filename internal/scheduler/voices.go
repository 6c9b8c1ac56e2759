package scheduler

import "time"

type activeVoice struct {
	voice Voice
	onset time.Duration
}

// voiceSet tracks the voices one hand has started. It is owned by a single
// Run call and needs no locking.
type voiceSet struct {
	voices []activeVoice
}

func (vs *voiceSet) add(v Voice, onset time.Duration) {
	vs.voices = append(vs.voices, activeVoice{voice: v, onset: onset})
}

func (vs *voiceSet) len() int { return len(vs.voices) }

// prune drops voices that stopped sounding or outlived maxDur. Expired voices
// still sounding are stopped.
func (vs *voiceSet) prune(now, maxDur time.Duration) {
	kept := vs.voices[:0]
	for _, av := range vs.voices {
		if !av.voice.IsBusy() {
			continue
		}
		if now-av.onset >= maxDur {
			av.voice.Stop()
			continue
		}
		kept = append(kept, av)
	}
	vs.voices = kept
}

// fade ramps each surviving voice toward silence over the last window of its
// lifetime: gain = volume * remaining / window.
func (vs *voiceSet) fade(now, maxDur, window time.Duration, volume float64) {
	if window <= 0 {
		return
	}
	for _, av := range vs.voices {
		remaining := maxDur - (now - av.onset)
		if remaining < window {
			av.voice.SetVolume(volume * float64(remaining) / float64(window))
		}
	}
}

func (vs *voiceSet) stopAll() {
	for _, av := range vs.voices {
		av.voice.Stop()
	}
	vs.voices = nil
}
