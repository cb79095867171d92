// Package atomicfile replaces files in one step so readers never observe a
// partial write.
package atomicfile

import (
	"os"
	"path/filepath"
)

// WriteFile writes data to a temp file next to path, syncs it, sets perm and
// renames it over path. The parent directory is created with 0700 when
// missing. pattern names the temp file as in os.CreateTemp.
func WriteFile(path string, data []byte, perm os.FileMode, pattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// No-op once the rename succeeded.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
