package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"rhythm/internal/app"
	"rhythm/internal/appconfig"
	"rhythm/internal/console"
	"rhythm/internal/cue"
	"rhythm/internal/timer"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("rhythm-console failed")
		return 1
	}
	return 0
}

type options struct {
	configPath string
	preset     string
	work       int
	rest       int
	rounds     int
	exercises  []string
	plain      bool
	silent     bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "rhythm-console",
		Short:         "Interval training timer for the terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&opts.preset, "preset", "p", "", "load a built-in or saved preset")
	cmd.Flags().IntVar(&opts.work, "work", 0, "work seconds")
	cmd.Flags().IntVar(&opts.rest, "rest", 0, "rest seconds")
	cmd.Flags().IntVar(&opts.rounds, "rounds", 0, "number of rounds")
	cmd.Flags().StringArrayVarP(&opts.exercises, "exercise", "e", nil, "exercise name (repeatable)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print events as lines instead of the full-screen view")
	cmd.Flags().BoolVar(&opts.silent, "silent", false, "disable tones and speech")
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	ctx := cmd.Context()
	logger := pslog.Ctx(ctx)
	cfg, err := appconfig.Load(opts.configPath)
	if err != nil {
		return err
	}

	engineLogger := logger
	if !opts.plain {
		// log lines would tear the full-screen view
		engineLogger = pslog.NewWithOptions(os.Stderr, pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.ErrorLevel})
	}
	engine, err := app.NewEngine(cfg.Timer, engineLogger)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := applyWorkout(cmd, engine, cfg, opts); err != nil {
		return err
	}

	cueOpts := app.CueOptions(cfg.Cues)
	if opts.silent {
		cueOpts = cue.Options{}
	}
	player := app.NewPlayer(cfg.Cues, engineLogger)
	events, unsubscribe := engine.Subscribe(64)
	defer unsubscribe()

	if opts.plain {
		announcer := cue.NewAnnouncer(cue.Multi{cue.NewLinePlayer(cmd.OutOrStdout()), player}, cueOpts, logger)
		return console.RunPlain(ctx, engine, events, cmd.OutOrStdout(), announcer)
	}

	cues, unsubscribeCues := engine.Subscribe(64)
	defer unsubscribeCues()
	announcer := cue.NewAnnouncer(player, cueOpts, engineLogger)
	cueCtx, stopCues := context.WithCancel(ctx)
	defer stopCues()
	go announcer.Run(cueCtx, cues)
	return console.Run(ctx, engine, events)
}

func applyWorkout(cmd *cobra.Command, engine *timer.Engine, cfg appconfig.Config, opts options) error {
	workout := engine.Snapshot().Configuration
	exercises := engine.Snapshot().Exercises
	if opts.preset != "" {
		presets, err := app.OpenPresets(cfg.Presets, pslog.Ctx(cmd.Context()))
		if err != nil {
			return err
		}
		defer func() { _ = presets.Close() }()
		p, err := presets.Get(cmd.Context(), opts.preset)
		if err != nil {
			return err
		}
		workout = p.Configuration
		exercises = p.Exercises
	}
	flags := cmd.Flags()
	if flags.Changed("work") {
		workout.WorkDuration = opts.work
	}
	if flags.Changed("rest") {
		workout.RestDuration = opts.rest
	}
	if flags.Changed("rounds") {
		workout.Rounds = opts.rounds
	}
	if flags.Changed("exercise") {
		exercises = opts.exercises
	}
	return engine.Configure(workout.Normalize(), exercises)
}
