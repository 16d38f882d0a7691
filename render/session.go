package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"xmp/config"
	"xmp/markdown"
	"xmp/preview"
	"xmp/settings"
	"xmp/vault"
)

// Session binds together everything needed to render documents of a single
// vault.
type Session struct {
	Vault    *vault.Vault
	Settings *settings.Store

	renderer *markdown.Renderer
	trace    *traceLog
	log      *zap.Logger
}

// NewSession opens vault at root, loads its preview settings and registers
// preview handler for configured block language.
func NewSession(cfg *config.Config, root string, log *zap.Logger) (*Session, error) {
	v, err := vault.Open(root)
	if err != nil {
		return nil, err
	}

	store, err := settings.Load(SettingsPath(v, cfg))
	if err != nil {
		return nil, err
	}

	s := &Session{
		Vault:    v,
		Settings: store,
		log:      log,
	}

	reg := markdown.NewRegistry()
	reg.Register(cfg.Preview.Language, PreviewBlock(preview.New(v, log.Named("preview")), s.observe))
	s.renderer = markdown.New(reg, cfg.Preview.Concurrency, log)
	return s, nil
}

// EnableTrace makes session remember outcome of every preview block until it
// is taken by Trace.
func (s *Session) EnableTrace() {
	s.trace = newTraceLog()
}

// Trace returns text dump of preview outcomes of the last render of vault
// document rel. Nil when tracing is off.
func (s *Session) Trace(rel string) []byte {
	if s.trace == nil {
		return nil
	}
	return s.trace.take(rel)
}

func (s *Session) observe(bctx markdown.BlockContext, res preview.Result) {
	if s.trace != nil {
		s.trace.add(bctx.DocumentPath, bctx.Index, res)
	}
}

// SettingsPath returns location of preview settings file for vault.
func SettingsPath(v *vault.Vault, cfg *config.Config) string {
	if filepath.IsAbs(cfg.Preview.SettingsFile) {
		return cfg.Preview.SettingsFile
	}
	return v.Abs(filepath.ToSlash(cfg.Preview.SettingsFile))
}

// PreviewBlock adapts preview pipeline to markdown block handler. Optional
// observe sees every result before it is rendered.
func PreviewBlock(p *preview.Pipeline, observe func(markdown.BlockContext, preview.Result)) markdown.BlockFunc {
	return func(ctx context.Context, source string, out *markdown.Output, bctx markdown.BlockContext) {
		res := p.Process(ctx, source, preview.DocumentPath(bctx.DocumentPath), bctx.Settings)
		if observe != nil {
			observe(bctx, res)
		}
		out.WriteHTML(preview.Fragment(res))
	}
}

// Render converts vault document to HTML body using settings current at the
// moment of the call.
func (s *Session) Render(ctx context.Context, rel string) ([]byte, settings.Snapshot, error) {
	snap := s.Settings.Snapshot()

	src, err := s.Vault.ReadBinary(rel)
	if err != nil {
		return nil, snap, fmt.Errorf("unable to read document: %w", err)
	}
	body, err := s.renderer.Render(ctx, rel, src, snap)
	if err != nil {
		return nil, snap, err
	}
	return body, snap, nil
}

// FindVaultRoot looks for vault root starting from dir and going up: the
// first directory having either settings file or ".obsidian" marker wins.
// When nothing is found dir itself is returned.
func FindVaultRoot(dir, settingsFile string) string {
	dir = filepath.Clean(dir)
	for cur := dir; ; {
		for _, marker := range []string{settingsFile, ".obsidian"} {
			if len(marker) == 0 || filepath.IsAbs(marker) {
				continue
			}
			if _, err := os.Stat(filepath.Join(cur, filepath.FromSlash(marker))); err == nil {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}
