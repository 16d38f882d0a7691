//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

const badFileName = "_bad_file_name_"

// CleanFileName drops path separators and leading dots from output file name.
func CleanFileName(in string) string {
	const forbidden = string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.Map(func(sym rune) rune {
		if strings.ContainsRune(forbidden, sym) {
			return -1
		}
		return sym
	}, in)
	if out = strings.TrimLeft(out, "."); len(out) == 0 {
		return badFileName
	}
	return out
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
