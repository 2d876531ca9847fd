package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tmpDir := t.TempDir()
	realFile := filepath.Join(tmpDir, "realfile.txt")
	require.NoError(t, os.WriteFile(realFile, []byte("test"), 0o600))
	symlinkPath := filepath.Join(tmpDir, "symlink.txt")
	require.NoError(t, os.Symlink(realFile, symlinkPath))

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "empty path", path: "", wantErr: ErrEmptyPath},
		{name: "null byte", path: "some\x00path", wantErr: ErrNullBytes},
		{name: "missing path is cleaned", path: "some/../valid/path.txt", want: filepath.Join("valid", "path.txt")},
		{name: "symlink is resolved", path: symlinkPath, want: mustEval(t, realFile)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePath(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func mustEval(t *testing.T, path string) string {
	t.Helper()
	real, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return real
}

func TestCreateAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "rules.csv")

	f, err := Create(path)
	require.NoError(t, err)
	_, err = f.WriteString("PACKAGE\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	exists, err := Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	buf := make([]byte, 7)
	_, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "PACKAGE", string(buf))
}

func TestExistsMissing(t *testing.T) {
	exists, err := Exists(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = Open("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}
