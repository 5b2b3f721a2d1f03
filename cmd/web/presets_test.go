package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"rhythm/internal/preset"
)

func writePresetConfig(t *testing.T, backend string) (cfgPath, presetsPath string) {
	t.Helper()
	dir := t.TempDir()
	presetsPath = filepath.Join(dir, "presets.yaml")
	if backend == "sqlite" {
		presetsPath = filepath.Join(dir, "presets.db")
	}
	cfgPath = filepath.Join(dir, "config.yaml")
	data := fmt.Sprintf("config_version: 1\npresets:\n  backend: %s\n  path: %s\n  watch: false\n", backend, presetsPath)
	if err := os.WriteFile(cfgPath, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath, presetsPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPresetsCommands(t *testing.T) {
	color.NoColor = true
	cfgPath, presetsPath := writePresetConfig(t, "file")

	out, err := runCLI(t, "presets", "save", "Mine", "-c", cfgPath, "--work", "40", "-e", "Rows", "-e", "Dips")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.TrimSpace(out) != "Mine: created" {
		t.Fatalf("save output %q", out)
	}

	repo, err := preset.NewFileRepository(presetsPath, nil)
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	saved, err := repo.Get(context.Background(), "Mine")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if saved.WorkDuration != 40 || saved.RestDuration != 10 || saved.Rounds != 5 ||
		len(saved.Exercises) != 2 || saved.Exercises[0] != "Rows" {
		t.Fatalf("saved preset %+v", saved)
	}

	if _, err := runCLI(t, "presets", "save", "Mine", "-c", cfgPath, "--rounds", "8"); !errors.Is(err, preset.ErrConflict) {
		t.Fatalf("save without overwrite: %v", err)
	}
	out, err = runCLI(t, "presets", "save", "Mine", "-c", cfgPath, "--rounds", "8", "--overwrite")
	if err != nil || strings.TrimSpace(out) != "Mine: updated" {
		t.Fatalf("overwrite: %q %v", out, err)
	}

	out, err = runCLI(t, "presets", "list", "-c", cfgPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(preset.Builtins())+1 {
		t.Fatalf("list lines %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Quick HIIT (built-in)  20s work, 10s rest, 8 rounds") {
		t.Fatalf("first line %q", lines[0])
	}
	if last := lines[len(lines)-1]; last != "Mine  30s work, 10s rest, 8 rounds" {
		t.Fatalf("user line %q", last)
	}

	if _, err := runCLI(t, "presets", "delete", "Quick HIIT", "-c", cfgPath); !errors.Is(err, preset.ErrReadOnly) {
		t.Fatalf("delete builtin: %v", err)
	}
	out, err = runCLI(t, "presets", "delete", "Mine", "-c", cfgPath)
	if err != nil || strings.TrimSpace(out) != "deleted Mine" {
		t.Fatalf("delete: %q %v", out, err)
	}
	if _, err := repo.Get(context.Background(), "Mine"); !errors.Is(err, preset.ErrNotFound) {
		t.Fatalf("Get after delete: %v", err)
	}
}

func TestPresetsCommandsSQLite(t *testing.T) {
	cfgPath, _ := writePresetConfig(t, "sqlite")
	if _, err := runCLI(t, "presets", "save", "Night", "-c", cfgPath, "--rest", "20"); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := runCLI(t, "presets", "list", "-c", cfgPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Night") || !strings.Contains(out, "30s work, 20s rest, 5 rounds") {
		t.Fatalf("list output:\n%s", out)
	}
}
