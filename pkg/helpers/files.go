package helpers

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteFileAtomic writes data to a temporary file next to path and renames it
// over path. A concurrent reader sees either the old or the new content,
// never a partial write. The temporary file is removed on failure.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "could not create %s", dir)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "could not create temporary file")
	}
	tmpPath := f.Name()

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return errors.Wrapf(err, "could not write %s", tmpPath)
	}
	if err = f.Sync(); err != nil {
		return errors.Wrapf(err, "could not sync %s", tmpPath)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "could not close %s", tmpPath)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return errors.Wrapf(err, "could not chmod %s", tmpPath)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "could not replace %s", path)
	}

	return nil
}
