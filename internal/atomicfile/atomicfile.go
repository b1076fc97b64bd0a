// Package atomicfile replaces a file through a temporary sibling so a
// failed write leaves the original untouched.
package atomicfile

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Options control how the replacement is installed.
type Options struct {
	// BackupSuffix, when set, keeps the original as path+BackupSuffix.
	BackupSuffix string

	// PreserveModTime restores the original modification time.
	PreserveModTime bool

	// Verify, when set, is called with the finished temporary file before
	// it replaces path. An error aborts the replacement.
	Verify func(tmpPath string) error
}

// Replace calls write with a temporary file in path's directory, then
// syncs it and renames it over path. The original's permission bits are
// kept. On any error the temporary file is removed and path is unchanged.
func Replace(path string, opts Options, write func(w io.Writer) error) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "stat original")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tagengine-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()        //nolint:errcheck // Best effort cleanup
			_ = os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return errors.Wrap(err, "copy permissions")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if opts.Verify != nil {
		if err := opts.Verify(tmpPath); err != nil {
			return errors.Wrap(err, "verify rewritten file")
		}
	}

	if opts.BackupSuffix != "" {
		if err := os.Link(path, path+opts.BackupSuffix); err != nil {
			if err := copyFile(path, path+opts.BackupSuffix, info.Mode().Perm()); err != nil {
				return errors.Wrap(err, "create backup")
			}
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "rename temp over original")
	}
	success = true

	if opts.PreserveModTime {
		_ = os.Chtimes(path, info.ModTime(), info.ModTime()) //nolint:errcheck // Non-fatal: file was written successfully
	}
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read-only

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close() //nolint:errcheck // Already failing
		return err
	}
	return out.Close()
}
