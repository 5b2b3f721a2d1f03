package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"pkt.systems/pslog"

	"rhythm/internal/cue"
	"rhythm/internal/preset"
	"rhythm/internal/settings"
	"rhythm/internal/timer"
	"rhythm/internal/viewmodel"
	"rhythm/pkg/realtime"
	"rhythm/views/components"
	"rhythm/views/pages"
)

// Notice topics published on the hub.
const (
	TopicPresets = "presets"
	TopicToast   = "toast"
)

// Notice tells stream clients that something outside the timer changed.
type Notice struct {
	Topic string
	Toast cue.Toast
}

// Options tunes what the browser is told to play.
type Options struct {
	Title      string
	Cues       cue.Options
	SpeechRate float64
}

type TimerHandler struct {
	engine   *timer.Engine
	settings *settings.Store
	presets  preset.Repository
	hub      *realtime.Broadcaster[Notice]
	log      pslog.Logger
	opts     Options
}

func NewTimerHandler(engine *timer.Engine, store *settings.Store, presets preset.Repository, hub *realtime.Broadcaster[Notice], logger pslog.Logger, opts Options) *TimerHandler {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	if opts.Title == "" {
		opts.Title = "Interval Timer"
	}
	if opts.SpeechRate <= 0 {
		opts.SpeechRate = cue.DefaultSpeechRate
	}
	return &TimerHandler{
		engine:   engine,
		settings: store,
		presets:  presets,
		hub:      hub,
		log:      logger,
		opts:     opts,
	}
}

// RegisterRoutes mounts page, command and API routes. The stream route is
// registered separately so it can skip request timeouts.
func (h *TimerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.page)
	r.Get("/timer", h.timerFragment)
	r.Post("/timer/start", h.start)
	r.Post("/timer/pause", h.pause)
	r.Post("/timer/reset", h.reset)
	r.Post("/settings", h.updateSettings)
	r.Post("/exercises", h.addExercise)
	r.Post("/exercises/{index}/delete", h.removeExercise)
	r.Get("/api/state", h.state)
	r.Get("/presets", h.presetsFragment)
	r.Get("/api/presets", h.listPresets)
	r.Post("/presets", h.savePreset)
	r.Post("/presets/{name}/load", h.loadPreset)
	r.Post("/presets/{name}/delete", h.deletePreset)
}

// RegisterStream mounts the server-sent event stream.
func (h *TimerHandler) RegisterStream(r chi.Router) {
	r.Get("/stream", h.stream)
}

func (h *TimerHandler) page(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	data := viewmodel.Page{
		Title:    h.opts.Title,
		Timer:    viewmodel.TimerFromSnapshot(snap),
		Settings: viewmodel.SettingsFromSnapshot(snap),
		Presets:  h.presetsView(r.Context(), snap),
	}
	render(w, r, pages.TimerPage(data))
}

func (h *TimerHandler) timerFragment(w http.ResponseWriter, r *http.Request) {
	render(w, r, components.TimerPanel(viewmodel.TimerFromSnapshot(h.engine.Snapshot())))
}

func (h *TimerHandler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *TimerHandler) start(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Start(); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}

func (h *TimerHandler) pause(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Pause(); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}

func (h *TimerHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	done(w, r)
}

func (h *TimerHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	current, _ := h.settings.Current()
	cfg := timer.Configuration{
		WorkDuration: parseInt(r.FormValue("work"), current.WorkDuration),
		RestDuration: parseInt(r.FormValue("rest"), current.RestDuration),
		Rounds:       parseInt(r.FormValue("rounds"), current.Rounds),
	}
	if _, err := h.settings.Update(cfg); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}

func (h *TimerHandler) addExercise(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if _, err := h.settings.AddExercise(r.FormValue("name")); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}

func (h *TimerHandler) removeExercise(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid exercise index", http.StatusBadRequest)
		return
	}
	if _, err := h.settings.RemoveExercise(index); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}

func (h *TimerHandler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, unsubscribe := h.engine.Subscribe(64)
	defer unsubscribe()
	notices := h.hub.Subscribe()
	defer h.hub.Unsubscribe(notices)

	sendSnapshot := func(includeTimer bool, includeSettings bool, includePresets bool) {
		snap := h.engine.Snapshot()
		if includeTimer {
			writeSSE(w, "timer", renderToString(r, components.TimerPanel(viewmodel.TimerFromSnapshot(snap))))
		}
		if includeSettings {
			writeSSE(w, "settings", renderToString(r, components.SettingsPanel(viewmodel.SettingsFromSnapshot(snap))))
		}
		if includePresets {
			writeSSE(w, "presets", renderToString(r, components.PresetsPanel(h.presetsView(r.Context(), snap))))
		}
	}

	sendSnapshot(true, true, true)
	flusher.Flush()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.sendEvent(w, ev)
			switch ev.Kind {
			case timer.EventCountdown, timer.EventPhaseEntered:
				sendSnapshot(true, false, false)
			default:
				// run state changed, so form editability changed too
				sendSnapshot(true, true, true)
			}
			flusher.Flush()
		case notice, ok := <-notices:
			if !ok {
				return
			}
			switch notice.Topic {
			case TopicPresets:
				sendSnapshot(false, false, true)
			case TopicToast:
				writeSSEJSON(w, "toast", notice.Toast)
			}
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

type cuePayload struct {
	Frequency  float64 `json:"frequency,omitempty"`
	DurationMs int64   `json:"durationMs,omitempty"`
	Speech     string  `json:"speech,omitempty"`
	Rate       float64 `json:"rate,omitempty"`
}

func (h *TimerHandler) sendEvent(w http.ResponseWriter, ev timer.Event) {
	if c, ok := cue.Plan(ev); ok {
		payload := cuePayload{}
		if c.Tone != nil && h.opts.Cues.Tones {
			payload.Frequency = c.Tone.Frequency
			payload.DurationMs = c.Tone.DurationMs()
		}
		if c.Speech != "" && h.opts.Cues.Speech {
			payload.Speech = c.Speech
			payload.Rate = h.opts.SpeechRate
		}
		if payload.Frequency > 0 || payload.Speech != "" {
			writeSSEJSON(w, "cue", payload)
		}
	}
	if toast, ok := cue.ToastFor(ev); ok {
		writeSSEJSON(w, "toast", toast)
	}
}

func (h *TimerHandler) presetsView(ctx context.Context, snap timer.Snapshot) viewmodel.Presets {
	list, err := h.presets.List(ctx)
	if err != nil {
		h.log.Warn("preset list failed", "err", err)
		list = preset.Builtins()
	}
	return viewmodel.PresetsFromList(list, snap.RunState == timer.Idle)
}

func (h *TimerHandler) publish(n Notice) {
	if h.hub != nil {
		h.hub.Publish(n)
	}
}

func (h *TimerHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Warn("request failed", "path", r.URL.Path, "err", err)
	} else {
		h.log.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, timer.ErrIllegalTransition), errors.Is(err, preset.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, preset.ErrNotFound), errors.Is(err, timer.ErrExerciseIndex):
		return http.StatusNotFound
	case errors.Is(err, preset.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, preset.ErrInvalidName), errors.Is(err, timer.ErrEmptyExercise), errors.Is(err, timer.ErrDuplicateExercise):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseInt(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
