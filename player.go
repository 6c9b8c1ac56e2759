package pianoduet

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cbegin/pianoduet-go/internal/audio"
	"github.com/cbegin/pianoduet-go/internal/scheduler"
	"github.com/cbegin/pianoduet-go/internal/score"
)

type EventKind int

const (
	EventNoteTriggered EventKind = iota
	EventHandFinished
	EventPlaybackEnded
)

// PlaybackEvent carries playback progress from Watch().
type PlaybackEvent struct {
	Kind EventKind
	// Hand, Index, Pitches and Offset are set for EventNoteTriggered. Hand is
	// also set for EventHandFinished.
	Hand    string
	Index   int
	Pitches []score.Pitch
	Offset  time.Duration
	// Err is the playback result for EventPlaybackEnded.
	Err error
}

type playback struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Player performs scores live, one goroutine per hand.
type Player struct {
	mu      sync.Mutex
	cfg     config
	repo    Resolver
	backend scheduler.Backend
	device  *audio.Device
	current *playback

	eventCh   chan PlaybackEvent
	eventChMu sync.Mutex
}

// NewPlayer opens the system audio device unless WithBackend supplies one.
func NewPlayer(repo Resolver, opts ...Option) (*Player, error) {
	if repo == nil {
		return nil, errors.New("nil sample repository")
	}
	cfg := newConfig(opts)
	if err := checkSampleRate(repo, cfg.params.SampleRate); err != nil {
		return nil, err
	}
	p := &Player{cfg: cfg, repo: repo, backend: cfg.backend}
	if p.backend == nil {
		dev, err := audio.Open(cfg.params.SampleRate)
		if err != nil {
			return nil, err
		}
		dev.SetMaxVoices(cfg.params.MaxVoices)
		p.device = dev
		p.backend = dev
	}
	return p, nil
}

// Play validates sc and starts both hands. It returns as soon as playback
// has started; use Wait or Watch to follow it. A playback already running is
// stopped first.
func (p *Player) Play(ctx context.Context, sc *score.Score) error {
	return p.start(ctx, sc, "")
}

// PlayAndExport plays sc live while rendering it to filename in parallel.
// A failed export stops playback.
func (p *Player) PlayAndExport(ctx context.Context, sc *score.Score, filename string) error {
	if filename == "" {
		return errors.New("empty export filename")
	}
	return p.start(ctx, sc, filename)
}

func (p *Player) start(ctx context.Context, sc *score.Score, exportTo string) error {
	if sc == nil {
		return errors.New("nil score")
	}
	if err := sc.Validate(); err != nil {
		return err
	}
	p.Stop()

	ctx, cancel := context.WithCancel(ctx)
	pb := &playback{cancel: cancel, done: make(chan struct{})}
	p.mu.Lock()
	p.current = pb
	p.mu.Unlock()

	p.cfg.logger.Info("playback started", "title", sc.Title, "tempo", float64(sc.Tempo), "timing", p.cfg.params.Timing.String())
	go p.run(ctx, pb, sc, exportTo)
	return nil
}

func (p *Player) run(ctx context.Context, pb *playback, sc *score.Score, exportTo string) {
	defer pb.cancel()
	g, gctx := errgroup.WithContext(ctx)
	for _, part := range sc.Hands() {
		part := part
		g.Go(func() error {
			s := scheduler.New(p.backend, p.repo, p.cfg.params.schedulerParams(),
				scheduler.WithClock(p.cfg.clock),
				scheduler.WithLogger(p.cfg.logger),
				scheduler.WithOnTrigger(func(tr scheduler.Trigger) {
					p.sendEvent(PlaybackEvent{
						Kind:    EventNoteTriggered,
						Hand:    tr.Hand,
						Index:   tr.Index,
						Pitches: tr.Pitches,
						Offset:  tr.Offset,
					})
				}))
			if err := s.Run(gctx, part, sc.Tempo); err != nil {
				return err
			}
			p.sendEvent(PlaybackEvent{Kind: EventHandFinished, Hand: part.Name})
			return nil
		})
	}
	if exportTo != "" {
		g.Go(func() error {
			return export(gctx, sc, p.repo, exportTo, p.cfg)
		})
	}
	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		p.cfg.logger.Error("playback failed", "title", sc.Title, "error", err)
	} else {
		p.cfg.logger.Info("playback ended", "title", sc.Title)
	}
	pb.err = err
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded, Err: err})
	close(pb.done)
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// Stop cancels the current playback, silences its voices and waits for the
// hands to return. Wait then reports context.Canceled.
func (p *Player) Stop() {
	p.mu.Lock()
	pb := p.current
	p.mu.Unlock()
	if pb == nil {
		return
	}
	pb.cancel()
	<-pb.done
}

// Wait blocks until the current playback ends and returns its error, or nil
// when nothing was played.
func (p *Player) Wait() error {
	p.mu.Lock()
	pb := p.current
	p.mu.Unlock()
	if pb == nil {
		return nil
	}
	<-pb.done
	return pb.err
}

// Watch returns a channel that receives playback events:
//   - EventNoteTriggered: a hand started the voices of one note event
//   - EventHandFinished: a hand played its last note and its voices released
//   - EventPlaybackEnded: both hands (and any export) returned
//
// The channel is buffered (cap 64) and events are dropped when it is full.
// Only the most recent Watch() channel receives events; call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 64)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// Close stops playback and releases the audio device the player opened.
func (p *Player) Close() error {
	p.Stop()
	if p.device != nil {
		return p.device.Close()
	}
	return nil
}
