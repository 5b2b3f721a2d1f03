package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"rhythm/internal/app"
	"rhythm/internal/appconfig"
	"rhythm/internal/cue"
	"rhythm/internal/handlers"
	"rhythm/internal/settings"
	"rhythm/pkg/realtime"
)

//go:embed static/*
var embeddedStatic embed.FS

const (
	requestTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

type serveOptions struct {
	configPath string
	addr       string
	localCues  bool
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&o.addr, "addr", "", "listen address (overrides http.addr)")
	cmd.Flags().BoolVar(&o.localCues, "local-cues", false, "also play cues on this machine")
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func serve(ctx context.Context, opts serveOptions) error {
	logger := pslog.Ctx(ctx)
	cfg, err := appconfig.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.HTTP.Addr = opts.addr
	}

	engine, err := app.NewEngine(cfg.Timer, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	presets, err := app.OpenPresets(cfg.Presets, logger)
	if err != nil {
		return err
	}
	defer func() { _ = presets.Close() }()

	hub := realtime.NewBroadcaster[handlers.Notice]()
	handler := handlers.NewTimerHandler(engine, settings.New(engine, logger), presets, hub, logger, handlers.Options{
		Cues:       app.CueOptions(cfg.Cues),
		SpeechRate: cfg.Cues.SpeechRate,
	})

	go func() {
		if err := presets.Watch(ctx, handler.PresetsChanged); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("preset watch stopped", "err", err)
		}
	}()

	if opts.localCues {
		player := app.NewPlayer(cfg.Cues, logger)
		events, unsubscribe := engine.Subscribe(64)
		defer unsubscribe()
		announcer := cue.NewAnnouncer(player, app.CueOptions(cfg.Cues), logger)
		go announcer.Run(ctx, events)
		logger.Info("local cues enabled", "tones", player.ToneAvailable(), "speech", player.SpeechAvailable())
	}

	router, err := newRouter(handler, logger)
	if err != nil {
		return err
	}
	logger.Info("http server listening", "addr", cfg.HTTP.Addr)
	return listenAndServe(ctx, cfg.HTTP.Addr, router)
}

func newRouter(handler *handlers.TimerHandler, logger pslog.Logger) (http.Handler, error) {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  pslog.LogLoggerWithLevel(logger, pslog.DebugLevel),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))
	// the event stream outlives any request timeout
	handler.RegisterStream(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		handler.RegisterRoutes(r)
	})
	return r, nil
}

func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	logger := pslog.Ctx(ctx)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ErrorLog:          pslog.LogLoggerWithLevel(logger, pslog.ErrorLevel),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", "err", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
