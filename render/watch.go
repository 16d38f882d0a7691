package render

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"xmp/directive"
	"xmp/settings"
	"xmp/state"
	"xmp/vault"
)

// debounceDelay groups bursts of events editors produce on save.
const debounceDelay = 250 * time.Millisecond

// Watch renders SOURCE once and then keeps output up to date: changed
// documents are re-rendered individually, archive or settings changes
// re-render everything.
func Watch(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("watch")

	j, err := prepare(cmd, env, log)
	if err != nil {
		return err
	}
	// outputs are expected to be replaced
	env.Overwrite = true

	if err := j.renderAll(ctx); err != nil {
		log.Warn("Initial rendering is incomplete", zap.Error(err))
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w := newWatcher(j, fsw)
	if err := w.addTree(j.session.Vault.Root()); err != nil {
		return err
	}

	cancel := j.session.Settings.Subscribe(func(snap settings.Snapshot) {
		log.Info("Preview settings changed", zap.Uint64("generation", snap.Generation))
		select {
		case w.settingsChanged <- struct{}{}:
		default:
		}
	})
	defer cancel()

	log.Info("Watching for changes", zap.String("vault", j.session.Vault.Root()), zap.String("source", j.scope), zap.String("destination", j.dst))
	return w.loop(ctx)
}

type watcher struct {
	j   *job
	fsw *fsnotify.Watcher
	log *zap.Logger

	settingsPath    string
	settingsChanged chan struct{}

	pending map[string]struct{}
	full    bool
}

func newWatcher(j *job, fsw *fsnotify.Watcher) *watcher {
	return &watcher{
		j:               j,
		fsw:             fsw,
		log:             j.log,
		settingsPath:    filepath.Clean(j.session.Settings.Path()),
		settingsChanged: make(chan struct{}, 1),
		pending:         make(map[string]struct{}),
	}
}

// addTree starts watching dir and all its subdirectories except hidden ones.
// Directory holding settings file is watched even when hidden.
func (w *watcher) addTree(dir string) error {
	settingsDir := filepath.Dir(w.settingsPath)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn("Skipping path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") && p != settingsDir {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
	if err != nil {
		return err
	}
	if fi, err := os.Stat(settingsDir); err == nil && fi.IsDir() {
		return w.fsw.Add(settingsDir)
	}
	return nil
}

func (w *watcher) loop(ctx context.Context) error {
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Watching stopped")
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if w.handle(event) {
				debounce = time.After(debounceDelay)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File watcher error", zap.Error(err))
		case <-w.settingsChanged:
			w.full = true
			debounce = time.After(debounceDelay)
		case <-debounce:
			debounce = nil
			w.flush(ctx)
		}
	}
}

// handle classifies event and reports whether anything has to be rendered.
func (w *watcher) handle(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)

	if name == w.settingsPath {
		if _, _, err := w.j.session.Settings.Reload(); err != nil {
			w.log.Warn("Unable to reload preview settings, keeping current", zap.Error(err))
		}
		// subscription takes care of re-rendering
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if fi, err := os.Stat(name); err == nil && fi.IsDir() {
			if err := w.addTree(name); err != nil {
				w.log.Warn("Unable to watch directory", zap.String("dir", name), zap.Error(err))
			}
			if name == filepath.Dir(w.settingsPath) {
				if _, _, err := w.j.session.Settings.Reload(); err != nil {
					w.log.Warn("Unable to reload preview settings, keeping current", zap.Error(err))
				}
				return false
			}
			w.full = true
			return true
		}
	}

	rel, err := w.j.session.Vault.Rel(name)
	if err != nil {
		return false
	}

	switch {
	case strings.EqualFold(path.Ext(rel), "."+directive.ArchiveExtension):
		// any document may reference changed archive
		w.log.Debug("Archive changed", zap.String("path", rel), zap.Stringer("op", event.Op))
		w.full = true
		return true
	case vault.IsDocument(rel) && w.j.inScope(rel):
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.j.session.Vault.Exists(rel) {
			return false
		}
		w.pending[rel] = struct{}{}
		return true
	}
	return false
}

func (w *watcher) flush(ctx context.Context) {
	if w.full {
		w.full = false
		clear(w.pending)
		if err := w.j.renderAll(ctx); err != nil {
			w.log.Warn("Rendering is incomplete", zap.Error(err))
		}
		return
	}

	docs := make([]string, 0, len(w.pending))
	for rel := range w.pending {
		docs = append(docs, rel)
	}
	clear(w.pending)
	sort.Sort(natural.StringSlice(docs))

	for _, rel := range docs {
		if ctx.Err() != nil {
			return
		}
		if err := w.j.renderDocument(ctx, rel); err != nil {
			w.log.Error("Unable to render document", zap.String("document", rel), zap.Error(err))
		}
	}
}
