package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"pkt.systems/pslog"

	"rhythm/internal/cue"
	"rhythm/internal/handlers"
	"rhythm/internal/preset"
	"rhythm/internal/settings"
	"rhythm/internal/timer"
	"rhythm/pkg/realtime"
)

func TestRouterServesPageAndAssets(t *testing.T) {
	engine := timer.New(timer.DefaultConfiguration(), timer.WithScheduler(realtime.NewManualScheduler()))
	defer engine.Close()
	repo, err := preset.NewFileRepository(filepath.Join(t.TempDir(), "presets.yaml"), nil)
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	logger := pslog.NewWithOptions(&strings.Builder{}, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
	handler := handlers.NewTimerHandler(engine, settings.New(engine, logger), preset.NewCatalog(repo),
		realtime.NewBroadcaster[handlers.Notice](), logger, handlers.Options{Cues: cue.Options{Tones: true}})
	router, err := newRouter(handler, logger)
	if err != nil {
		t.Fatalf("newRouter: %v", err)
	}

	cases := []struct {
		path string
		want string
	}{
		{"/", `id="timer"`},
		{"/static/app.js", "EventSource"},
		{"/static/style.css", ".phase-badge"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tc.path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Fatalf("%s: body missing %q", tc.path, tc.want)
		}
	}
}
