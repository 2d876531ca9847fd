package history

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

func run(n int) domain.HistoryEntry {
	return domain.HistoryEntry{
		Timestamp: time.Date(2026, 1, 1, 0, n, 0, 0, time.UTC),
		Evaluated: n,
	}
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store := FileStore{Path: filepath.Join(t.TempDir(), "missing.json")}

	h, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, h.Entries)
}

func TestFileStoreLoadRecordedRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	content := `{"entries":[{"timestamp":"2026-01-15T10:00:00Z","commit":"abc","passed":false,"evaluated":4,"violations":1,"ratios":{"LINE":0.755}}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	h, err := (&FileStore{Path: path}).Load()
	require.NoError(t, err)
	require.Len(t, h.Entries, 1)

	e := h.Entries[0]
	assert.Equal(t, "abc", e.Commit)
	assert.False(t, e.Passed)
	assert.Equal(t, 1, e.Violations)
	assert.InDelta(t, 0.755, e.Ratios[domain.MetricLine], 1e-9)
}

func TestFileStoreLoadRejectsGarbage(t *testing.T) {
	for name, content := range map[string]string{
		"not json": "not valid json",
		"empty":    "",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := (&FileStore{Path: path}).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "decode "+path)
		})
	}
}

func TestFileStoreSaveCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.json")
	store := &FileStore{Path: path}
	saved := domain.History{Entries: []domain.HistoryEntry{{
		Timestamp: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Branch:    "main",
		Passed:    true,
		Evaluated: 3,
		Ratios:    map[domain.MetricKind]float64{domain.MetricBranch: 0.8},
	}}}

	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, "main", loaded.Entries[0].Branch)
	assert.Equal(t, 0.8, loaded.Entries[0].Ratios[domain.MetricBranch])

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStoreAppendKeepsNewest(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "history.json"), MaxEntries: 3}
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(run(i)))
	}

	h, err := store.Load()
	require.NoError(t, err)
	require.Len(t, h.Entries, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{h.Entries[0].Evaluated, h.Entries[1].Evaluated, h.Entries[2].Evaluated})
}

func TestFileStoreConcurrentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- (&FileStore{Path: path}).Append(run(n))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	h, err := (&FileStore{Path: path}).Load()
	require.NoError(t, err)
	assert.Len(t, h.Entries, 8)
}

func TestKeepNewest(t *testing.T) {
	entries := []domain.HistoryEntry{run(0), run(1), run(2)}

	assert.Len(t, keepNewest(entries, 5), 3)
	assert.Equal(t, 2, keepNewest(entries, 1)[0].Evaluated)
	assert.Len(t, keepNewest(entries, 0), 3)
}
