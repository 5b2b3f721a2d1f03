package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"rhythm/internal/viewmodel"
	"rhythm/views/components"
)

// TimerPage renders the full single-page timer.
func TimerPage(p viewmodel.Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(p.Title)+
			`</title><link rel="stylesheet" href="/static/style.css"><script src="/static/app.js" defer></script>`+
			`</head><body><main class="layout"><h1>`+templ.EscapeString(p.Title)+`</h1><div class="column">`); err != nil {
			return err
		}
		if err := components.TimerPanel(p.Timer).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div><div class="column">`); err != nil {
			return err
		}
		if err := components.SettingsPanel(p.Settings).Render(ctx, w); err != nil {
			return err
		}
		if err := components.PresetsPanel(p.Presets).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></main><div id="toasts" aria-live="polite"></div></body></html>`)
		return err
	})
}
