package config

import (
	"strings"
	"unicode/utf8"
)

// maxNameLength bounds base name of produced files in bytes, leaving room for
// extension within usual 255 byte limit.
const maxNameLength = 240

const badFileName = "_bad_file_name_"

// OutputFileName makes file name from base name and extension. Control and
// forbidden characters are dropped, leading dots and spaces trimmed and long
// names cut on a rune boundary.
func OutputFileName(base, ext string) string {
	out := strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(forbiddenInName, r) {
			return -1
		}
		return r
	}, base)
	out = strings.TrimLeft(out, ". ")
	for len(out) > maxNameLength {
		_, size := utf8.DecodeLastRuneInString(out)
		out = out[:len(out)-size]
	}
	if out == "" {
		out = badFileName
	}
	return out + ext
}
