// Package library implements the project/demo registry over the music root
// directory. The filesystem is the sole source of truth: listings are
// computed per request and mutations are plain directory operations with
// explicit pre-condition checks.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"demoshelf/internal/observability/metrics"
)

const noteFileName = "project.json"

// Project summarizes a project directory for listings.
type Project struct {
	Name string `json:"name"`
	// LatestDemoModified is the max mtime of contained .wav files in epoch
	// millis, 0 when the project has none.
	LatestDemoModified int64 `json:"latestDemoModified"`
	HasDemos           bool  `json:"hasDemos"`
}

// Demo describes one .wav file within a project.
type Demo struct {
	Filename      string `json:"filename"`
	DisplayName   string `json:"displayName"`
	Modified      int64  `json:"modified"`
	ModifiedLabel string `json:"modifiedLabel"`
}

// Note is the optional per-project metadata record.
type Note struct {
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// Config assembles a Library.
type Config struct {
	Root    string
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Library exposes the registry operations over a music root directory.
type Library struct {
	root    string
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New constructs a Library rooted at cfg.Root, creating the root directory
// when absent.
func New(cfg Config) (*Library, error) {
	root := filepath.Clean(cfg.Root)
	if root == "" || root == "." {
		return nil, fmt.Errorf("music root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create music root: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Default()
	}
	return &Library{root: root, logger: logger, metrics: recorder}, nil
}

// Root returns the music root directory.
func (l *Library) Root() string {
	return l.root
}

// projectDir resolves a project name to its directory, rejecting traversal.
func (l *Library) projectDir(name string) (string, error) {
	return childPath(l.root, name)
}

// ResolveDemoPath resolves a demo filename within a project, rejecting any
// path that is not a strict descendant of the project directory.
func (l *Library) ResolveDemoPath(project, file string) (string, error) {
	dir, err := l.projectDir(project)
	if err != nil {
		return "", err
	}
	return childPath(dir, file)
}

// CreateProject creates the project directory and, when a note is supplied,
// writes the metadata record inside it.
func (l *Library) CreateProject(rawName, note string) (Project, error) {
	name := SanitizeProjectName(rawName)
	if name == "" {
		return Project{}, ErrNameRequired
	}
	dir, err := l.projectDir(name)
	if err != nil {
		return Project{}, err
	}
	if _, err := os.Stat(dir); err == nil {
		return Project{}, ErrAlreadyExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Project{}, fmt.Errorf("stat project: %w", err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}
	if trimmed := SanitizeProjectName(note); trimmed != "" {
		record := Note{Note: trimmed, CreatedAt: time.Now().UTC()}
		payload, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return Project{}, fmt.Errorf("encode project note: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, noteFileName), payload, 0o644); err != nil {
			return Project{}, fmt.Errorf("write project note: %w", err)
		}
	}
	l.metrics.ObserveLibraryEvent("project_created")
	return Project{Name: name}, nil
}

// RenameProject atomically moves the project directory to the sanitized
// target name.
func (l *Library) RenameProject(current, rawNext string) (Project, error) {
	next := SanitizeProjectName(rawNext)
	if next == "" {
		return Project{}, ErrNameRequired
	}
	currentDir, err := l.projectDir(current)
	if err != nil {
		return Project{}, err
	}
	nextDir, err := l.projectDir(next)
	if err != nil {
		return Project{}, err
	}
	if _, err := os.Stat(currentDir); errors.Is(err, fs.ErrNotExist) {
		return Project{}, ErrNotFound
	} else if err != nil {
		return Project{}, fmt.Errorf("stat project: %w", err)
	}
	if _, err := os.Stat(nextDir); err == nil {
		return Project{}, ErrAlreadyExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Project{}, fmt.Errorf("stat rename target: %w", err)
	}
	if err := os.Rename(currentDir, nextDir); err != nil {
		return Project{}, fmt.Errorf("rename project: %w", err)
	}
	l.metrics.ObserveLibraryEvent("project_renamed")
	return Project{Name: next}, nil
}

// DeleteProject removes the project directory. The registry never destroys
// demo content implicitly: a project with any remaining .wav file is refused.
func (l *Library) DeleteProject(name string) error {
	dir, err := l.projectDir(name)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read project: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && IsDemoFile(entry.Name()) {
			return ErrHasDemos
		}
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	l.metrics.ObserveLibraryEvent("project_deleted")
	return nil
}

// ProjectNote reads the optional metadata record for a project. A missing
// record yields a zero Note without error.
func (l *Library) ProjectNote(name string) (Note, error) {
	dir, err := l.projectDir(name)
	if err != nil {
		return Note{}, err
	}
	payload, err := os.ReadFile(filepath.Join(dir, noteFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Note{}, nil
	}
	if err != nil {
		return Note{}, fmt.Errorf("read project note: %w", err)
	}
	var note Note
	if err := json.Unmarshal(payload, &note); err != nil {
		return Note{}, fmt.Errorf("parse project note: %w", err)
	}
	return note, nil
}

// ListDemos enumerates the .wav files in a project, newest first.
func (l *Library) ListDemos(project string) ([]Demo, error) {
	dir, err := l.projectDir(project)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	demos := make([]Demo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsDemoFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			l.logger.Warn("skipping unreadable demo", "project", project, "file", entry.Name(), "error", err)
			l.metrics.ObserveLibraryWarning()
			continue
		}
		modified := info.ModTime()
		demos = append(demos, Demo{
			Filename:      entry.Name(),
			DisplayName:   DisplayName(entry.Name()),
			Modified:      modified.UnixMilli(),
			ModifiedLabel: modified.Format("Jan 2, 2006 3:04 PM"),
		})
	}
	sort.Slice(demos, func(i, j int) bool {
		if demos[i].Modified != demos[j].Modified {
			return demos[i].Modified > demos[j].Modified
		}
		return demos[i].Filename < demos[j].Filename
	})
	return demos, nil
}

// scanProject computes the demo freshness summary for one project directory.
// An unreadable directory is reported as having no demos.
func (l *Library) scanProject(name string) Project {
	project := Project{Name: name}
	entries, err := os.ReadDir(filepath.Join(l.root, name))
	if err != nil {
		l.logger.Warn("skipping unreadable project", "project", name, "error", err)
		l.metrics.ObserveLibraryWarning()
		return project
	}
	for _, entry := range entries {
		if entry.IsDir() || !IsDemoFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			l.logger.Warn("skipping unreadable demo", "project", name, "file", entry.Name(), "error", err)
			l.metrics.ObserveLibraryWarning()
			continue
		}
		project.HasDemos = true
		if millis := info.ModTime().UnixMilli(); millis > project.LatestDemoModified {
			project.LatestDemoModified = millis
		}
	}
	return project
}
