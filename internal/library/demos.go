package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SaveDemo streams an uploaded .wav file into the project directory,
// creating the project when absent. The destination filename is the
// sanitized original name. Returns the stored filename and size.
func (l *Library) SaveDemo(project, filename string, contents io.Reader) (string, int64, error) {
	if !IsDemoFile(filename) {
		return "", 0, ErrUnsupportedType
	}
	stored := SanitizeFileName(filepath.Base(filename))
	if DisplayName(stored) == "" {
		return "", 0, ErrNameRequired
	}
	dir, err := l.projectDir(project)
	if err != nil {
		return "", 0, err
	}
	dest, err := childPath(dir, stored)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create project: %w", err)
	}

	// Spool to a temp file in the same directory so a failed upload never
	// leaves a partial demo under its final name.
	tmp, err := os.CreateTemp(dir, "pending-demo-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	written, err := io.Copy(tmp, contents)
	if err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("save demo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("close demo file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("store demo: %w", err)
	}
	l.metrics.ObserveLibraryEvent("demo_uploaded")
	return stored, written, nil
}

// RenameDemo renames a demo file within its project, forcing the .wav
// suffix on the new name.
func (l *Library) RenameDemo(project, currentFile, rawNext string) (string, error) {
	next := SanitizeFileName(rawNext)
	if next == "" || DisplayName(next) == "" {
		return "", ErrNameRequired
	}
	if !strings.EqualFold(filepath.Ext(next), demoExtension) {
		next += demoExtension
	}
	currentPath, err := l.ResolveDemoPath(project, currentFile)
	if err != nil {
		return "", err
	}
	nextPath, err := l.ResolveDemoPath(project, next)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(currentPath); errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("stat demo: %w", err)
	}
	if err := os.Rename(currentPath, nextPath); err != nil {
		return "", fmt.Errorf("rename demo: %w", err)
	}
	l.metrics.ObserveLibraryEvent("demo_renamed")
	return next, nil
}

// DeleteDemo unlinks a demo file from its project.
func (l *Library) DeleteDemo(project, file string) error {
	path, err := l.ResolveDemoPath(project, file)
	if err != nil {
		return err
	}
	if err := os.Remove(path); errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("delete demo: %w", err)
	}
	l.metrics.ObserveLibraryEvent("demo_deleted")
	return nil
}
