package audio

import (
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

type voice struct {
	mu      sync.Mutex
	player  *ebitaudio.Player
	stopped bool
}

func (v *voice) SetVolume(gain float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped {
		return
	}
	if gain < 0 {
		gain = 0
	}
	v.player.SetVolume(gain)
}

func (v *voice) IsBusy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.stopped && v.player.IsPlaying()
}

// Stop is idempotent.
func (v *voice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped {
		return
	}
	v.stopped = true
	v.player.Pause()
	_ = v.player.Close()
}
