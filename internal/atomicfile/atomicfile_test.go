package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.yaml")

	require.NoError(t, WriteFile(path, []byte("a: 1\n"), 0o600, ".test-*.tmp"))
	require.NoError(t, WriteFile(path, []byte("a: 2\n"), 0o600, ".test-*.tmp"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(dir, "nested", ".test-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteFile_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "taken")
	require.NoError(t, os.Mkdir(target, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(target, "x"), nil, 0o600))

	assert.Error(t, WriteFile(target, []byte("data"), 0o600, ".test-*.tmp"))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".test-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp file is removed when the rename fails")
}
