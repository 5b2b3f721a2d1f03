package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rhythm/internal/cue"
	"rhythm/internal/logx"
	"rhythm/internal/preset"
	"rhythm/views/components"
)

func (h *TimerHandler) presetsFragment(w http.ResponseWriter, r *http.Request) {
	render(w, r, components.PresetsPanel(h.presetsView(r.Context(), h.engine.Snapshot())))
}

func (h *TimerHandler) listPresets(w http.ResponseWriter, r *http.Request) {
	list, err := h.presets.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if list == nil {
		list = []preset.Preset{}
	}
	writeJSON(w, list)
}

func (h *TimerHandler) savePreset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	p, err := h.settings.Capture(r.FormValue("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	overwrite := r.FormValue("overwrite") != ""
	result, err := h.presets.Save(r.Context(), p, overwrite)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	logx.WithPreset(h.log, p.Name).Info("preset stored", "result", result.String())
	h.publish(Notice{Topic: TopicPresets})
	h.publish(Notice{Topic: TopicToast, Toast: presetToast(result, p.Name)})
	done(w, r)
}

func (h *TimerHandler) loadPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := h.presets.Get(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.settings.ApplyPreset(p); err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish(Notice{Topic: TopicToast, Toast: cue.Toast{
		Title:   "Preset Loaded",
		Message: fmt.Sprintf("%q settings have been applied.", p.Name),
	}})
	done(w, r)
}

func (h *TimerHandler) deletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.presets.Delete(r.Context(), name); err != nil {
		h.fail(w, r, err)
		return
	}
	logx.WithPreset(h.log, name).Info("preset deleted")
	h.publish(Notice{Topic: TopicPresets})
	h.publish(Notice{Topic: TopicToast, Toast: cue.Toast{
		Title:   "Preset Deleted",
		Message: fmt.Sprintf("%q has been deleted.", name),
	}})
	done(w, r)
}

func presetToast(result preset.SaveResult, name string) cue.Toast {
	switch result {
	case preset.Updated:
		return cue.Toast{Title: "Preset Updated", Message: fmt.Sprintf("%q has been updated.", name)}
	case preset.Unchanged:
		return cue.Toast{Title: "Preset Unchanged", Message: fmt.Sprintf("%q already matches these settings.", name)}
	default:
		return cue.Toast{Title: "Preset Saved", Message: fmt.Sprintf("%q has been saved.", name)}
	}
}

// PresetsChanged tells stream clients to refresh the preset list.
func (h *TimerHandler) PresetsChanged() {
	h.publish(Notice{Topic: TopicPresets})
}
