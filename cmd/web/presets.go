package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"rhythm/internal/app"
	"rhythm/internal/appconfig"
	"rhythm/internal/preset"
	"rhythm/internal/timer"
)

func newPresetsCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage saved workout presets",
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")

	cmd.AddCommand(newPresetsListCmd(&cfgPath))
	cmd.AddCommand(newPresetsSaveCmd(&cfgPath))
	cmd.AddCommand(newPresetsDeleteCmd(&cfgPath))
	return cmd
}

func openPresets(cmd *cobra.Command, cfgPath string) (*app.Presets, error) {
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return app.OpenPresets(cfg.Presets, pslog.Ctx(cmd.Context()))
}

func newPresetsListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and saved presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := openPresets(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = presets.Close() }()
			list, err := presets.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			name := color.New(color.Bold)
			dim := color.New(color.Faint)
			for _, p := range list {
				tag := ""
				if p.Builtin {
					tag = dim.Sprint(" (built-in)")
				}
				_, _ = fmt.Fprintf(out, "%s%s  %s\n", name.Sprint(p.Name), tag, p.Summary())
			}
			return nil
		},
	}
}

func newPresetsSaveCmd(cfgPath *string) *cobra.Command {
	var work, rest, rounds int
	var exercises []string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := openPresets(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = presets.Close() }()
			p, err := preset.Preset{
				Name:          args[0],
				Configuration: timer.Configuration{WorkDuration: work, RestDuration: rest, Rounds: rounds},
				Exercises:     exercises,
			}.Normalize()
			if err != nil {
				return err
			}
			result, err := presets.Save(cmd.Context(), p, overwrite)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Name, result)
			return nil
		},
	}
	defaults := timer.DefaultConfiguration()
	cmd.Flags().IntVar(&work, "work", defaults.WorkDuration, "work seconds")
	cmd.Flags().IntVar(&rest, "rest", defaults.RestDuration, "rest seconds")
	cmd.Flags().IntVar(&rounds, "rounds", defaults.Rounds, "number of rounds")
	cmd.Flags().StringArrayVarP(&exercises, "exercise", "e", nil, "exercise name (repeatable)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing preset")
	return cmd
}

func newPresetsDeleteCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := openPresets(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = presets.Close() }()
			if err := presets.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
