package library

import "errors"

var (
	// ErrInvalidPath indicates a name resolved outside its project or root directory.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotFound indicates the project or demo file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates the target project already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNameRequired indicates a name was empty after sanitization.
	ErrNameRequired = errors.New("name is required")
	// ErrHasDemos indicates a project still contains demo files and cannot be deleted.
	ErrHasDemos = errors.New("project still contains demos")
	// ErrUnsupportedType indicates an upload that is not a .wav file.
	ErrUnsupportedType = errors.New("only .wav files are supported")
)
