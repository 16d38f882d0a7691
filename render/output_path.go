package render

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"xmp/config"
	"xmp/state"
)

// OutputExt is extension of produced files.
const OutputExt = ".html"

// buildOutputPath returns output file path for vault document rel. By
// default output mirrors vault structure under dst. User-defined template
// replaces relative part of the path and may introduce its own
// subdirectories. All path segments are cleaned and, if requested,
// transliterated.
func buildOutputPath(rel, dst, vaultRoot string, env *state.LocalEnv) string {
	defaultPath := buildDefaultPath(rel, dst, env)

	if env.Cfg.Render.OutputNameTemplate == "" {
		return defaultPath
	}

	expandedName := expandOutputNameTemplate(rel, vaultRoot, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return defaultPath
	}
	return assemblePathWithSubdirs(dst, expandedName, env)
}

func buildDefaultPath(rel, dst string, env *state.LocalEnv) string {
	dir, file := path.Split(rel)
	parts := []string{dst}
	for _, segment := range splitPath(dir) {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	parts = append(parts, cleanPathSegment(strings.TrimSuffix(file, path.Ext(file)), env)+OutputExt)
	return filepath.Join(parts...)
}

func expandOutputNameTemplate(rel, vaultRoot string, env *state.LocalEnv) string {
	name := config.OutputNameTemplateFieldName
	expandedName, err := expandTemplate(name, env.Cfg.Render.OutputNameTemplate, buildValues(name, rel, vaultRoot))
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(expandedName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output
// path.
func assemblePathWithSubdirs(outDir, expandedName string, env *state.LocalEnv) string {
	segments := splitPath(expandedName)
	if len(segments) == 0 {
		return outDir
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, segment := range segments[:len(segments)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	last := strings.TrimSuffix(segments[len(segments)-1], OutputExt)
	parts = append(parts, cleanPathSegment(last, env)+OutputExt)
	return filepath.Join(parts...)
}

// splitPath breaks path on both separators, dropping empty, "." and ".."
// segments so result never leaves destination directory.
func splitPath(p string) []string {
	fields := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	segments := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "." || f == ".." {
			continue
		}
		segments = append(segments, f)
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Render.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
