// Package render implements render and watch subcommands: it walks vault
// documents, converts them to HTML with xmind previews and writes results
// mirroring vault structure.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"xmp/state"
	"xmp/vault"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	j, err := prepare(cmd, env, log)
	if err != nil {
		return err
	}

	log.Info("Processing starting",
		zap.String("source", j.scope), zap.String("vault", j.session.Vault.Root()), zap.String("destination", j.dst), zap.Stringer("pass", j.pass))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return j.renderAll(ctx)
}

// job is a single render or watch invocation.
type job struct {
	env     *state.LocalEnv
	session *Session
	// scope is vault path of SOURCE, "." for the whole vault
	scope  string
	single bool
	dst    string
	pass   uuid.UUID
	log    *zap.Logger
}

func prepare(cmd *cli.Command, env *state.LocalEnv, log *zap.Logger) (*job, error) {
	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return nil, errors.New("no input source has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return nil, err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	root := cmd.String("vault")
	if len(root) == 0 {
		start := src
		if !fi.IsDir() {
			start = filepath.Dir(src)
		}
		root = FindVaultRoot(start, env.Cfg.Preview.SettingsFile)
		log.Debug("Vault root detected", zap.String("vault", root))
	}

	env.Overwrite = cmd.Bool("overwrite")
	env.Standalone = env.Cfg.Render.Standalone
	if cmd.IsSet("standalone") {
		env.Standalone = cmd.Bool("standalone")
	}

	env.DefaultStyle = defaultStylesheet
	if env.Cfg.Render.StylesheetPath != "" {
		data, err := os.ReadFile(env.Cfg.Render.StylesheetPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read style css from %q: %w", env.Cfg.Render.StylesheetPath, err)
		}
		env.DefaultStyle = data
	}

	session, err := NewSession(env.Cfg, root, log)
	if err != nil {
		return nil, fmt.Errorf("unable to open vault: %w", err)
	}
	if env.Rpt != nil {
		env.Rpt.Store("settings/"+filepath.Base(session.Settings.Path()), session.Settings.Path())
		session.EnableTrace()
	}

	scope, err := session.Vault.Rel(src)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() && !vault.IsDocument(scope) {
		return nil, fmt.Errorf("input is not a markdown document (%s)", src)
	}

	pass, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate render pass id: %w", err)
	}

	return &job{
		env:     env,
		session: session,
		scope:   scope,
		single:  !fi.IsDir(),
		dst:     dst,
		pass:    pass,
		log:     log,
	}, nil
}

// inScope reports whether vault document belongs to SOURCE.
func (j *job) inScope(rel string) bool {
	switch {
	case j.single:
		return rel == j.scope
	case j.scope == ".":
		return !hiddenPath(rel)
	default:
		return strings.HasPrefix(rel, j.scope+"/") && !hiddenPath(strings.TrimPrefix(rel, j.scope+"/"))
	}
}

func hiddenPath(rel string) bool {
	for _, segment := range strings.Split(path.Dir(rel), "/") {
		if strings.HasPrefix(segment, ".") && segment != "." {
			return true
		}
	}
	return false
}

func (j *job) documents() ([]string, error) {
	if j.single {
		return []string{j.scope}, nil
	}
	return j.session.Vault.Documents(j.scope)
}

// renderAll renders every document in scope. Failed documents do not stop
// processing, errors are collected.
func (j *job) renderAll(ctx context.Context) error {
	docs, err := j.documents()
	if err != nil {
		return fmt.Errorf("unable to list documents: %w", err)
	}
	if len(docs) == 0 {
		j.log.Debug("Nothing to process", zap.String("source", j.scope))
		return nil
	}

	var errs error
	for _, rel := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.renderDocument(ctx, rel); err != nil {
			j.log.Error("Unable to render document", zap.String("document", rel), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", rel, err))
		}
	}
	if errs != nil {
		return fmt.Errorf("%d of %d documents were not rendered: %w", len(multierr.Errors(errs)), len(docs), errs)
	}
	return nil
}

// renderDocument renders single vault document rel into its output file.
func (j *job) renderDocument(ctx context.Context, rel string) (rerr error) {
	var outputName string

	j.log.Debug("Rendering starting", zap.String("from", rel))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			j.log.Error("Rendering ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("rendering panic: %v", r)
		} else if rerr == nil {
			j.log.Info("Rendering completed", zap.Duration("elapsed", time.Since(start)), zap.String("from", rel), zap.String("to", outputName))
		}
	}(time.Now())

	outputName = buildOutputPath(rel, j.dst, j.session.Vault.Root(), j.env)

	body, snap, err := j.session.Render(ctx, rel)
	if trace := j.session.Trace(rel); len(trace) > 0 {
		j.env.Rpt.StoreData("trace/"+rel+".txt", trace)
	}
	if err != nil {
		return err
	}

	data, err := buildPage(page{
		Standalone: j.env.Standalone,
		Pass:       j.pass.String(),
		Generation: snap.Generation,
		Title:      strings.TrimSuffix(path.Base(rel), path.Ext(rel)),
		Body:       trustedHTML(body),
	}, j.env.DefaultStyle)
	if err != nil {
		return fmt.Errorf("unable to build page: %w", err)
	}

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !j.env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		j.log.Debug("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	// Store rendering result for debugging
	j.env.Rpt.Store("result/"+rel+OutputExt, outputName)
	return nil
}
