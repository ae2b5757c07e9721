//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// forbiddenInName lists runes dropped from produced file names.
const forbiddenInName = "/:\x00"

// colorTerminal reports whether stream is a terminal able to show colors.
func colorTerminal(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
