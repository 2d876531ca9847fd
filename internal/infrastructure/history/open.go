package history

import (
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/pathutil"
)

// Open returns the store for path: SQLite for .db, .sqlite and .sqlite3
// files, JSON otherwise.
func Open(path string) (application.HistoryStore, error) {
	clean, err := pathutil.ValidatePath(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(clean)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(clean, DefaultMaxEntries)
	default:
		return &FileStore{Path: clean, MaxEntries: DefaultMaxEntries}, nil
	}
}
