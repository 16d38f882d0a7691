package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"xmp/common"
	"xmp/render"
	"xmp/settings"
	"xmp/state"
	"xmp/vault"
)

// openSettings loads preview settings of the vault either given by --vault
// flag or detected from current directory.
func openSettings(cmd *cli.Command, env *state.LocalEnv) (*settings.Store, error) {
	root := cmd.String("vault")
	if len(root) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("unable to get working directory: %w", err)
		}
		root = render.FindVaultRoot(wd, env.Cfg.Preview.SettingsFile)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	v, err := vault.Open(root)
	if err != nil {
		return nil, fmt.Errorf("unable to open vault: %w", err)
	}
	return settings.Load(render.SettingsPath(v, env.Cfg))
}

func showSettings(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	store, err := openSettings(cmd, env)
	if err != nil {
		return err
	}
	data, err := settings.Marshal(store.Snapshot().Settings)
	if err != nil {
		return err
	}
	env.Log.Debug("Showing preview settings", zap.String("file", store.Path()))

	if _, err := cmd.Root().Writer.Write(data); err != nil {
		return fmt.Errorf("unable to write settings: %w", err)
	}
	return nil
}

func setSettings(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	var alignment common.Alignment
	if cmd.IsSet("default-alignment") {
		var err error
		if alignment, err = common.ParseAlignment(cmd.String("default-alignment")); err != nil {
			return err
		}
	}

	changes := 0
	for _, name := range []string{"base-folder", "show-open-button", "default-zoom", "default-alignment"} {
		if cmd.IsSet(name) {
			changes++
		}
	}
	if changes == 0 {
		return errors.New("nothing to change, no settings have been specified")
	}

	store, err := openSettings(cmd, env)
	if err != nil {
		return err
	}

	snap, err := store.Update(func(s *settings.Settings) {
		if cmd.IsSet("base-folder") {
			s.BaseFolder = cmd.String("base-folder")
		}
		if cmd.IsSet("show-open-button") {
			s.ShowOpenButton = cmd.Bool("show-open-button")
		}
		if cmd.IsSet("default-zoom") {
			s.DefaultZoom = cmd.Float("default-zoom")
		}
		if cmd.IsSet("default-alignment") {
			s.DefaultAlignment = alignment
		}
	})
	if err != nil {
		return err
	}

	env.Log.Info("Preview settings saved",
		zap.String("file", store.Path()),
		zap.String("base_folder", snap.BaseFolder),
		zap.Bool("show_open_button", snap.ShowOpenButton),
		zap.Float64("default_zoom", snap.DefaultZoom),
		zap.Stringer("default_alignment", snap.DefaultAlignment))
	return nil
}
