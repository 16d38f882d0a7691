package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	fixzip "github.com/hidez8891/zip"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"xmp/archive"
	"xmp/state"
)

// Run is thumb subcommand: writes embedded thumbnail of a single archive to
// file or lists archive content.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("thumb")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input archive has been specified")
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read archive: %w", err)
	}

	if cmd.Bool("list") {
		r, err := Open(data)
		if err != nil {
			return err
		}
		return List(r, os.Stdout)
	}

	zoom := cmd.Float("zoom")
	if zoom <= 0 || zoom > 1 {
		return fmt.Errorf("zoom must be in (0, 1] range, got %v", zoom)
	}

	dst, err := outputPath(src, cmd.Args().Get(1))
	if err != nil {
		return err
	}

	log.Info("Extraction starting", zap.String("source", src), zap.String("destination", dst), zap.Float64("zoom", zoom))
	defer func(start time.Time) {
		if err == nil {
			log.Info("Extraction completed", zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	img, err := Extract(data)
	if err != nil {
		return err
	}
	if !img.IsPNG() {
		log.Warn("Thumbnail does not look like PNG image", zap.String("source", src))
	}
	if len(img.Title) > 0 {
		log.Debug("Archive root topic", zap.String("title", img.Title))
	}

	out := img.Data
	if zoom != 1 {
		if out, err = Scale(img.Data, zoom); err != nil {
			return err
		}
	}

	if dst == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}

	if _, err := os.Stat(dst); err == nil {
		if !cmd.Bool("overwrite") {
			return fmt.Errorf("output file already exists: %s", dst)
		}
		log.Warn("Overwriting existing file", zap.String("file", dst))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(dst, out, 0644); err != nil {
		return fmt.Errorf("unable to write thumbnail: %w", err)
	}
	env.Rpt.Store("thumb/"+filepath.Base(dst), dst)
	return nil
}

// outputPath returns destination file for thumbnail: "-" is STDOUT, empty
// or existing directory get archive base name with png extension.
func outputPath(src, dst string) (string, error) {
	if dst == "-" {
		return dst, nil
	}
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".png"
	if len(dst) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		return filepath.Join(wd, name), nil
	}
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		return filepath.Join(dst, name), nil
	}
	return dst, nil
}

// Scale resizes image keeping aspect ratio, zoom is a fraction of original
// width.
func Scale(data []byte, zoom float64) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to decode thumbnail: %w", err)
	}
	w := max(int(math.Round(float64(img.Bounds().Dx())*zoom)), 1)
	resized := imaging.Resize(img, w, 0, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("unable to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// List writes archive entries with their uncompressed sizes.
func List(r *archive.Reader, w io.Writer) error {
	return archive.Walk(r, "", func(f *fixzip.File) error {
		_, err := fmt.Fprintf(w, "%10d  %s\n", f.UncompressedSize64, f.Name)
		return err
	})
}
