package preset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
	"pkt.systems/pslog"
)

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// FileRepository keeps presets in a single YAML file on the local disk.
type FileRepository struct {
	path string
	log  pslog.Logger
	now  func() time.Time
	mu   sync.Mutex
}

// NewFileRepository returns a repository backed by the YAML file at path.
// The file is created on first save.
func NewFileRepository(path string, logger pslog.Logger) (*FileRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset file path is required")
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &FileRepository{
		path: path,
		log:  logger.With("preset_file", path),
		now:  time.Now,
	}, nil
}

// Path returns the backing file.
func (r *FileRepository) Path() string {
	return r.path
}

// List returns stored presets, newest first.
func (r *FileRepository) List(ctx context.Context) ([]Preset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadLocked()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return list, nil
}

// Get returns the preset called name.
func (r *FileRepository) Get(ctx context.Context, name string) (Preset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadLocked()
	if err != nil {
		return Preset{}, err
	}
	if i := indexOf(list, strings.TrimSpace(name)); i >= 0 {
		return list[i], nil
	}
	return Preset{}, fmt.Errorf("preset %q: %w", name, ErrNotFound)
}

// Save writes p to the file.
func (r *FileRepository) Save(ctx context.Context, p Preset, overwrite bool) (SaveResult, error) {
	p, err := p.Normalize()
	if err != nil {
		return 0, err
	}
	p.Builtin = false

	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadLocked()
	if err != nil {
		return 0, err
	}
	result := Created
	if i := indexOf(list, p.Name); i >= 0 {
		existing := list[i]
		if SameSetup(existing, p) {
			return Unchanged, nil
		}
		if !overwrite {
			return 0, fmt.Errorf("save %q: %w", p.Name, ErrConflict)
		}
		p.CreatedAt = existing.CreatedAt
		list[i] = p
		result = Updated
	} else {
		p.CreatedAt = r.now().UTC()
		list = append(list, p)
	}
	if err := r.writeLocked(list); err != nil {
		return 0, err
	}
	r.log.Debug("preset saved", "preset", p.Name, "result", result.String())
	return result, nil
}

// Delete removes the preset called name.
func (r *FileRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadLocked()
	if err != nil {
		return err
	}
	i := indexOf(list, strings.TrimSpace(name))
	if i < 0 {
		return fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	list = append(list[:i], list[i+1:]...)
	if err := r.writeLocked(list); err != nil {
		return err
	}
	r.log.Debug("preset deleted", "preset", name)
	return nil
}

// Watch calls onChange whenever the preset file is written, created, renamed
// or removed by anyone, until ctx is done.
func (r *FileRepository) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create preset directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Atomic saves replace the file, so watch the directory.
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	base := filepath.Base(r.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				r.log.Trace("preset file changed", "op", event.Op.String())
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.log.Warn("preset watch error", "err", err)
			}
		}
	}()
	return nil
}

func (r *FileRepository) loadLocked() ([]Preset, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		r.log.Warn("preset load failed", "err", err)
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		r.log.Warn("preset load failed", "err", err)
		return nil, fmt.Errorf("parse presets %s: %w", r.path, err)
	}
	out := make([]Preset, 0, len(file.Presets))
	for _, p := range file.Presets {
		normalized, err := p.Normalize()
		if err != nil {
			r.log.Warn("skipping invalid preset", "preset", p.Name, "err", err)
			continue
		}
		out = append(out, normalized)
	}
	return out, nil
}

func (r *FileRepository) writeLocked(list []Preset) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create preset directory: %w", err)
	}
	data, err := yaml.Marshal(presetFile{Presets: list})
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "presets-*.yaml")
	if err != nil {
		r.log.Warn("preset save failed", "err", err)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		r.log.Warn("preset save failed", "err", err)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		r.log.Warn("preset save failed", "err", err)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		r.log.Warn("preset save failed", "err", err)
		return err
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		_ = os.Remove(tmp.Name())
		r.log.Warn("preset save failed", "err", err)
		return err
	}
	return nil
}

func indexOf(list []Preset, name string) int {
	for i, p := range list {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// sortNewestFirst orders by creation time; ties keep the later-saved entry first.
func sortNewestFirst(list []Preset) {
	slices.Reverse(list)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
