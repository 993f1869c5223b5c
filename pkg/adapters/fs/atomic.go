package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix marks the scratch files of in-flight writes. The watcher
// never reports them.
const TempFilePrefix = ".quire-tmp-"

// filePerm is the mode of every file the store and the exporter create.
const filePerm os.FileMode = 0o644

// replaceFile swaps the contents of path for data in one rename. Readers see
// either the previous blob or the new one, never a prefix of it. The parent
// directory is synced afterwards so the rename itself survives a crash.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)

	scratch, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("open scratch file in %s: %w", dir, err)
	}
	defer os.Remove(scratch.Name())

	if err := fill(scratch, data); err != nil {
		return fmt.Errorf("stage %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(scratch.Name(), path); err != nil {
		return fmt.Errorf("swap in %s: %w", filepath.Base(path), err)
	}
	syncDir(dir)
	return nil
}

// fill writes data to f, flushes it to disk and closes f.
func fill(f *os.File, data []byte) error {
	_, err := f.Write(data)
	if err == nil {
		err = f.Chmod(filePerm)
	}
	if err == nil {
		err = f.Sync()
	}
	return errors.Join(err, f.Close())
}

// syncDir is best effort: some platforms cannot fsync a directory.
func syncDir(dir string) {
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
}
