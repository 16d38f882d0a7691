// Package settings owns per vault preview settings: loading with defaults,
// validation, persistence and change notification. Renders never look at the
// store directly, they receive an immutable Snapshot.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"

	"xmp/common"
)

// Settings is persisted preview configuration.
type Settings struct {
	BaseFolder       string           `yaml:"base_folder"`
	ShowOpenButton   bool             `yaml:"show_open_button"`
	DefaultZoom      float64          `yaml:"default_zoom" validate:"gte=0.5,lte=1"`
	DefaultAlignment common.Alignment `yaml:"default_alignment" validate:"oneof=left center right"`
}

// Defaults returns hardcoded settings persisted values are merged over.
func Defaults() Settings {
	return Settings{
		BaseFolder:       "/drafts/xmind",
		ShowOpenButton:   true,
		DefaultZoom:      1.0,
		DefaultAlignment: common.AlignmentCenter,
	}
}

// Validate checks settings value ranges.
func (s Settings) Validate() error {
	if err := gencfg.Validate(&s); err != nil {
		return fmt.Errorf("invalid preview settings: %w", err)
	}
	return nil
}

// Snapshot is an immutable view of settings handed to a single render.
type Snapshot struct {
	Settings
	// Generation increases with every successful update.
	Generation uint64
}

// Store is the single owner of settings lifecycle.
type Store struct {
	path string

	mu          sync.RWMutex
	current     Snapshot
	subscribers map[int]func(Snapshot)
	nextID      int
}

// New creates store with given initial value which is not persisted until
// first update. Useful when vault has no settings file.
func New(path string, s Settings) *Store {
	return &Store{
		path:        path,
		current:     Snapshot{Settings: s},
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Load reads settings file and merges its values over defaults. Absent file is
// not an error.
func Load(path string) (*Store, error) {
	s, err := read(path)
	if err != nil {
		return nil, err
	}
	return New(path, s), nil
}

func read(path string) (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("unable to read preview settings: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("unable to decode preview settings (%s): %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Path returns location of the settings file.
func (st *Store) Path() string {
	return st.path
}

// Snapshot returns current settings.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Update applies fn to a copy of current settings, validates and persists the
// result and then notifies subscribers. On any error current settings stay
// unchanged.
func (st *Store) Update(fn func(*Settings)) (Snapshot, error) {
	st.mu.Lock()
	next := st.current.Settings
	fn(&next)
	if err := next.Validate(); err != nil {
		st.mu.Unlock()
		return Snapshot{}, err
	}
	if err := save(st.path, next); err != nil {
		st.mu.Unlock()
		return Snapshot{}, err
	}
	st.current = Snapshot{Settings: next, Generation: st.current.Generation + 1}
	snap := st.current
	subs := make([]func(Snapshot), 0, len(st.subscribers))
	for _, fn := range st.subscribers {
		subs = append(subs, fn)
	}
	st.mu.Unlock()

	st.broadcast(subs, snap)
	return snap, nil
}

// Reload re-reads settings file (changed by somebody else) and notifies
// subscribers when content differs from current value.
func (st *Store) Reload() (Snapshot, bool, error) {
	s, err := read(st.path)
	if err != nil {
		return st.Snapshot(), false, err
	}

	st.mu.Lock()
	if s == st.current.Settings {
		snap := st.current
		st.mu.Unlock()
		return snap, false, nil
	}
	st.current = Snapshot{Settings: s, Generation: st.current.Generation + 1}
	snap := st.current
	subs := make([]func(Snapshot), 0, len(st.subscribers))
	for _, fn := range st.subscribers {
		subs = append(subs, fn)
	}
	st.mu.Unlock()

	st.broadcast(subs, snap)
	return snap, true, nil
}

// Subscribe registers fn to be called after every change. Returned function
// removes subscription.
func (st *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := st.nextID
	st.nextID++
	st.subscribers[id] = fn
	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		delete(st.subscribers, id)
	}
}

func (st *Store) broadcast(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

// Marshal returns YAML representation of settings as persisted.
func Marshal(s Settings) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal preview settings: %w", err)
	}
	return data, nil
}

// save writes settings next to destination and renames, so readers never see
// partially written file.
func save(path string, s Settings) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create settings directory: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to save preview settings: %w", err)
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("unable to save preview settings: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to save preview settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("unable to save preview settings: %w", err)
	}
	return nil
}
