package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"xmp/common"
	"xmp/config"
	"xmp/misc"
	"xmp/render"
	"xmp/state"
	"xmp/thumbnail"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 && env.Log != nil {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	env.RestoreStdLog()

	// log is synced now and may go into the report, errors must be reported
	// directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := env.Cfg.Logging.PanicLogName()
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors, urfave/cli exit handling is not used.
var errWasHandled bool

// called before appContext is destroyed, so error still could be logged
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// error is reported either by exitErrHandler or on exit directly to stderr
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

const sourceHelp = `
SOURCE:
    path to markdown document or directory inside vault:
        path to a file: "[path_to_vault]notes/page.md" - render single document
        path to a directory: "[path_to_vault]notes" - recursively render all documents under directory

    Hidden directories (".obsidian", ".trash" and such) are skipped. Vault root is
    looked up from SOURCE unless --vault is given: the first parent directory having
    preview settings file or ".obsidian" directory.

DESTINATION:
    always a path, output layout mirrors vault, if absent - current working directory
`

func newVaultFlag() cli.Flag {
	return &cli.StringFlag{Name: "vault", Aliases: []string{"v"}, Usage: "vault root `DIRECTORY`, detected automatically when absent"}
}

func main() {

	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "renders markdown vault documents with XMind mind map previews",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Renders vault document(s) to HTML replacing xmind blocks with previews",
				OnUsageError: usageErrorHandler,
				Action:       render.Run,
				Flags: []cli.Flag{
					newVaultFlag(),
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
					&cli.BoolFlag{Name: "standalone", Usage: "produce complete HTML pages instead of embeddable fragments (default from configuration)"},
				},
				ArgsUsage:          "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp,
			},
			{
				Name:         "watch",
				Usage:        "Renders vault document(s) and re-renders them whenever documents, archives or preview settings change",
				OnUsageError: usageErrorHandler,
				Action:       render.Watch,
				Flags: []cli.Flag{
					newVaultFlag(),
					&cli.BoolFlag{Name: "standalone", Usage: "produce complete HTML pages instead of embeddable fragments (default from configuration)"},
				},
				ArgsUsage: "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp + `
Existing output files are always overwritten. Press Ctrl+C to stop.
`,
			},
			{
				Name:         "thumb",
				Usage:        "Extracts thumbnail image from xmind archive",
				OnUsageError: usageErrorHandler,
				Action:       thumbnail.Run,
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "zoom", Aliases: []string{"z"}, Value: 1, Usage: "scale image by `FACTOR` (0, 1]"},
					&cli.BoolFlag{Name: "list", Aliases: []string{"l"}, Usage: "list archive entries instead of extracting"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite existing destination file"},
				},
				ArgsUsage: "ARCHIVE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
ARCHIVE:
    path to xmind file

DESTINATION:
    file name or directory to write PNG image to, "-" for STDOUT
    if absent - image is written next to ARCHIVE
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "settings",
				Usage:        "Shows or changes vault preview settings",
				OnUsageError: usageErrorHandler,
				Commands: []*cli.Command{
					{
						Name:         "show",
						Usage:        "Outputs effective preview settings (YAML)",
						OnUsageError: usageErrorHandler,
						Action:       showSettings,
						Flags:        []cli.Flag{newVaultFlag()},
						ArgsUsage:    " ",
					},
					{
						Name:         "set",
						Usage:        "Changes preview settings, only specified values are modified",
						OnUsageError: usageErrorHandler,
						Action:       setSettings,
						Flags: []cli.Flag{
							newVaultFlag(),
							&cli.StringFlag{Name: "base-folder", Usage: "vault `PATH` used to resolve names of xmind files"},
							&cli.BoolFlag{Name: "show-open-button", Usage: "show \"Open\" control on previews by default"},
							&cli.FloatFlag{Name: "default-zoom", Usage: "default preview `ZOOM` [0.5, 1]"},
							&cli.StringFlag{Name: "default-alignment",
								Usage: "default preview `ALIGNMENT` (supported: " + strings.Join(common.AlignmentNames(), ", ") + ")"},
						},
						ArgsUsage: " ",
					},
				},
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// log is either not set yet (argument parsing) or already closed
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputting configuration", zap.String("state", state), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
