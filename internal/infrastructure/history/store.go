package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

// DefaultMaxEntries is how many runs a store keeps when no cap is set.
const DefaultMaxEntries = 100

// FileStore keeps the run history in one JSON document.
type FileStore struct {
	Path string
	// MaxEntries caps retained runs; values <= 0 select DefaultMaxEntries.
	MaxEntries int
}

// Load returns the stored history, or an empty one when the file does not
// exist yet.
func (s *FileStore) Load() (domain.History, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.History{}, nil
	}
	if err != nil {
		return domain.History{}, err
	}
	defer f.Close()

	var h domain.History
	if err := json.NewDecoder(f).Decode(&h); err != nil {
		return domain.History{}, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return h, nil
}

// Save replaces the file atomically.
func (s *FileStore) Save(h domain.History) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return replaceFile(s.Path, data)
}

// Append records one run and drops the oldest runs beyond the cap. Concurrent
// appenders on the same path are serialised by a lock file.
func (s *FileStore) Append(entry domain.HistoryEntry) error {
	return s.withLock(func() error {
		h, err := s.Load()
		if err != nil {
			return err
		}
		h.Entries = keepNewest(append(h.Entries, entry), s.MaxEntries)
		return s.Save(h)
	})
}

// withLock runs fn while holding an exclusive lock on Path + ".lock".
func (s *FileStore) withLock(fn func() error) (err error) {
	lockPath := s.Path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return err
	}
	// #nosec G304 -- the history path comes from flags or config
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockExclusive(f); err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	defer func() {
		if unlockErr := unlock(f); err == nil {
			err = unlockErr
		}
	}()
	return fn()
}

func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func keepNewest(entries []domain.HistoryEntry, limit int) []domain.HistoryEntry {
	if limit <= 0 {
		limit = DefaultMaxEntries
	}
	if extra := len(entries) - limit; extra > 0 {
		return entries[extra:]
	}
	return entries
}
