// Package components renders the page fragments that are swapped in over SSE.
package components

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"rhythm/internal/viewmodel"
)

// writer stops writing after the first error.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) rawf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func disabled(on bool) string {
	if on {
		return " disabled"
	}
	return ""
}

// PresetPath returns the URL path for an action on the named preset.
func PresetPath(name string, action string) string {
	return "/presets/" + url.PathEscape(name) + "/" + action
}

// TimerPanel renders the clock, round counter and controls.
func TimerPanel(v viewmodel.Timer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		classes := "timer phase-" + v.Phase
		if v.Running {
			classes += " running"
		}
		if v.Countdown {
			classes += " countdown"
		}
		w.rawf(`<section id="timer" class="%s" data-phase="%s" data-state="%s">`,
			templ.EscapeString(classes), templ.EscapeString(v.Phase), templ.EscapeString(v.RunState))
		w.raw(`<div class="phase-badge">`)
		w.text(v.PhaseLabel)
		w.raw(`</div>`)
		w.rawf(`<div class="dial" style="--progress:%.4f">`, v.PhaseProgress)
		w.raw(`<div class="clock">`)
		w.text(v.Clock)
		w.raw(`</div>`)
		if v.Paused {
			w.raw(`<div class="paused">PAUSED</div>`)
		}
		w.raw(`</div>`)
		if v.Exercise != "" && !v.Finished {
			w.raw(`<div class="exercise">`)
			w.text(v.Exercise)
			w.raw(`</div>`)
		}
		w.rawf(`<div class="round">Round %d of %d</div>`, v.CurrentRound, v.TotalRounds)
		w.rawf(`<div class="overall"><span>Overall Progress: %d%%</span>`, v.OverallPercent)
		w.rawf(`<progress max="100" value="%d"></progress></div>`, v.OverallPercent)
		w.raw(`<div class="controls">`)
		if v.CanPause {
			w.raw(`<form method="post" action="/timer/pause" data-async><button type="submit">Pause</button></form>`)
		} else {
			label := "Start"
			if v.Paused {
				label = "Resume"
			}
			w.rawf(`<form method="post" action="/timer/start" data-async><button type="submit"%s>%s</button></form>`,
				disabled(!v.CanStart), label)
		}
		w.raw(`<form method="post" action="/timer/reset" data-async><button type="submit">Reset</button></form>`)
		w.raw(`</div></section>`)
		return w.err
	})
}

// SettingsPanel renders the configuration form and exercise list.
func SettingsPanel(v viewmodel.Settings) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		off := disabled(!v.Editable)
		w.raw(`<section id="settings" class="settings">`)
		w.raw(`<h2>Settings</h2>`)
		w.raw(`<form method="post" action="/settings" data-async>`)
		w.rawf(`<label>Work (seconds)<input type="number" name="work" min="1" value="%d"%s></label>`, v.WorkDuration, off)
		w.rawf(`<label>Rest (seconds)<input type="number" name="rest" min="1" value="%d"%s></label>`, v.RestDuration, off)
		w.rawf(`<label>Rounds<input type="number" name="rounds" min="1" value="%d"%s></label>`, v.Rounds, off)
		w.rawf(`<button type="submit"%s>Apply</button>`, off)
		w.raw(`</form>`)

		w.raw(`<h3>Exercises</h3>`)
		if len(v.Exercises) == 0 {
			w.raw(`<p class="empty">No exercises. Rounds will announce work time.</p>`)
		} else {
			w.raw(`<ol class="exercises">`)
			for _, ex := range v.Exercises {
				class := ""
				if ex.Current {
					class = ` class="current"`
				}
				w.rawf(`<li%s>`, class)
				w.text(ex.Name)
				w.rawf(`<form method="post" action="/exercises/%s/delete" data-async><button type="submit" aria-label="Remove"%s>&times;</button></form>`,
					strconv.Itoa(ex.Index), off)
				w.raw(`</li>`)
			}
			w.raw(`</ol>`)
		}
		w.raw(`<form method="post" action="/exercises" data-async class="add-exercise">`)
		w.rawf(`<input type="text" name="name" placeholder="Add exercise" required%s>`, off)
		w.rawf(`<button type="submit"%s>Add</button>`, off)
		w.raw(`</form></section>`)
		return w.err
	})
}

// PresetsPanel renders the preset list and the save form.
func PresetsPanel(v viewmodel.Presets) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		off := disabled(!v.Editable)
		w.raw(`<section id="presets" class="presets">`)
		w.raw(`<h2>Presets</h2>`)
		w.raw(`<form method="post" action="/presets" data-async class="save-preset">`)
		w.rawf(`<input type="text" name="name" placeholder="Preset name" maxlength="64" required%s>`, off)
		w.rawf(`<label><input type="checkbox" name="overwrite" value="1"%s> Overwrite</label>`, off)
		w.rawf(`<button type="submit"%s>Save current</button>`, off)
		w.raw(`</form>`)
		w.raw(`<ul class="preset-list">`)
		for _, p := range v.Items {
			w.raw(`<li>`)
			w.raw(`<div class="preset-name">`)
			w.text(p.Name)
			if p.Builtin {
				w.raw(` <span class="tag">built-in</span>`)
			}
			w.raw(`</div><div class="preset-summary">`)
			w.text(p.Summary)
			w.raw(`</div>`)
			w.rawf(`<form method="post" action="%s" data-async><button type="submit"%s>Load</button></form>`,
				templ.EscapeString(PresetPath(p.Name, "load")), off)
			if !p.Builtin {
				w.rawf(`<form method="post" action="%s" data-async><button type="submit">Delete</button></form>`,
					templ.EscapeString(PresetPath(p.Name, "delete")))
			}
			w.raw(`</li>`)
		}
		w.raw(`</ul></section>`)
		return w.err
	})
}
