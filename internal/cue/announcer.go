package cue

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/pslog"

	"rhythm/internal/logx"
	"rhythm/internal/timer"
)

// Player plays tones and speaks text. Calls may block for the length of the sound.
type Player interface {
	Tone(ctx context.Context, t Tone) error
	Speak(ctx context.Context, text string) error
}

// Options selects which parts of a cue are played.
type Options struct {
	Tones  bool
	Speech bool
}

// Announcer plays the cue for each timer event it receives. Playback runs in
// the background and its failures are only logged.
type Announcer struct {
	player Player
	opts   Options
	log    pslog.Logger
	wg     sync.WaitGroup
}

// NewAnnouncer returns an announcer playing through player.
func NewAnnouncer(player Player, opts Options, logger pslog.Logger) *Announcer {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Announcer{player: player, opts: opts, log: logger}
}

// Run consumes events until the channel closes or ctx is done, then waits for
// playback already started to finish.
func (a *Announcer) Run(ctx context.Context, events <-chan timer.Event) {
	defer a.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.Handle(ctx, ev)
		}
	}
}

// Handle starts playback for ev without waiting for it.
func (a *Announcer) Handle(ctx context.Context, ev timer.Event) {
	c, ok := Plan(ev)
	if !ok {
		return
	}
	if !a.opts.Tones {
		c.Tone = nil
	}
	if !a.opts.Speech {
		c.Speech = ""
	}
	if c.Empty() || a.player == nil {
		return
	}
	log := logx.WithEvent(a.log, ev)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.play(ctx, c, log)
	}()
}

// Wait blocks until playback started by Handle has finished.
func (a *Announcer) Wait() {
	a.wg.Wait()
}

func (a *Announcer) play(ctx context.Context, c Cue, log pslog.Logger) {
	if c.Tone != nil {
		if err := a.player.Tone(ctx, *c.Tone); err != nil {
			logFailure(log, "tone", err)
		}
	}
	if c.Speech != "" {
		if err := a.player.Speak(ctx, c.Speech); err != nil {
			logFailure(log, "speech", err)
		}
	}
}

func logFailure(log pslog.Logger, kind string, err error) {
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.Canceled) {
		log.Debug("cue skipped", "kind", kind, "err", err)
		return
	}
	log.Warn("cue playback failed", "kind", kind, "err", err)
}

// Multi plays through every player in turn; the first error is returned
// after all have been tried.
type Multi []Player

// Tone plays t on each player.
func (m Multi) Tone(ctx context.Context, t Tone) error {
	var first error
	for _, p := range m {
		if err := p.Tone(ctx, t); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Speak says text on each player.
func (m Multi) Speak(ctx context.Context, text string) error {
	var first error
	for _, p := range m {
		if err := p.Speak(ctx, text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
