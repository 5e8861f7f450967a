package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

const maxFileNameRunes = 255

// ErrInvalidFileName is returned when nothing usable remains of a file name.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps the last path element of an uploaded name, drops
// control characters, and caps the length while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	s := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." || s == "/" {
		return "", ErrInvalidFileName
	}
	if runes := []rune(s); len(runes) > maxFileNameRunes {
		ext := []rune(path.Ext(s))
		if len(ext) >= maxFileNameRunes {
			ext = nil
		}
		s = string(runes[:maxFileNameRunes-len(ext)]) + string(ext)
	}
	return s, nil
}
