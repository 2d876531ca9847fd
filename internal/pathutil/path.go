// Package pathutil provides utilities for safe path handling.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath = errors.New("path is empty")
	ErrNullBytes = errors.New("path contains null bytes")
)

// ValidatePath cleans path and resolves symlinks. A path that does not exist
// yet is returned cleaned so callers can create it.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if strings.Contains(path, "\x00") {
		return "", ErrNullBytes
	}
	cleaned := filepath.Clean(path)
	realPath, err := filepath.EvalSymlinks(cleaned)
	if err != nil {
		return cleaned, nil
	}
	return realPath, nil
}

// Open validates path and opens it for reading.
func Open(path string) (*os.File, error) {
	clean, err := ValidatePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return os.Open(clean) // #nosec G304 - path is validated above
}

// Create validates path, creates its parent directory and truncates or
// creates the file.
func Create(path string) (*os.File, error) {
	clean, err := ValidatePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, err
	}
	return os.Create(clean) // #nosec G304 - path is validated above
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) (bool, error) {
	clean, err := ValidatePath(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(clean)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
