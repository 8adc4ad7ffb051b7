package library

import (
	"path/filepath"
	"strings"
)

const demoExtension = ".wav"

// SanitizeProjectName trims whitespace and strips path-separator characters
// from a user-supplied project name.
func SanitizeProjectName(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\':
			return -1
		default:
			return r
		}
	}, raw)
	return strings.TrimSpace(cleaned)
}

// SanitizeFileName reduces a user-supplied filename to a safe character set,
// replacing anything outside it with underscores.
func SanitizeFileName(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_' || r == ' ' || r == '(' || r == ')':
			return r
		default:
			return '_'
		}
	}, raw)
	return strings.TrimSpace(cleaned)
}

// IsDemoFile reports whether the filename carries the .wav extension,
// case-insensitively.
func IsDemoFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), demoExtension)
}

// DisplayName strips the extension from a demo filename.
func DisplayName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// childPath joins name onto dir and verifies the result is a strict,
// single-segment descendant of dir. It defends against `..` traversal,
// absolute-path injection, and embedded separators in name parameters.
func childPath(dir, name string) (string, error) {
	if name == "" {
		return "", ErrNameRequired
	}
	joined := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, joined)
	if err != nil {
		return "", ErrInvalidPath
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	if strings.ContainsRune(rel, filepath.Separator) {
		return "", ErrInvalidPath
	}
	return joined, nil
}
