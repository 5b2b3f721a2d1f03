package cue

import (
	"context"
	"io"
	"sync"

	"github.com/fatih/color"
)

// LinePlayer prints cues as coloured text lines instead of making sound.
type LinePlayer struct {
	mu     sync.Mutex
	w      io.Writer
	tone   *color.Color
	speech *color.Color
}

// NewLinePlayer writes cue lines to w.
func NewLinePlayer(w io.Writer) *LinePlayer {
	return &LinePlayer{
		w:      w,
		tone:   color.New(color.FgCyan),
		speech: color.New(color.FgYellow, color.Bold),
	}
}

// Tone prints a beep marker. Countdown beeps also ring the terminal bell.
func (p *LinePlayer) Tone(_ context.Context, t Tone) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	bell := ""
	if t == CountdownTone {
		bell = "\a"
	}
	_, err := p.tone.Fprintf(p.w, "%s♪ %.0f Hz\n", bell, t.Frequency)
	return err
}

// Speak prints text.
func (p *LinePlayer) Speak(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.speech.Fprintf(p.w, "» %s\n", text)
	return err
}
