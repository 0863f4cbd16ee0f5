package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(fs afero.Fs, path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return fs.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(fs afero.Fs, path string) error {
	if _, err := fs.Stat(path); err == nil {
		return fs.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}

// SameFile reports whether a and b name the same file on disk.
// Missing files are never the same.
func SameFile(fs afero.Fs, a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := fs.Stat(a)
	if err != nil {
		return false
	}
	bi, err := fs.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// CopyFile copies src to dst byte for byte, keeping mode and modification time.
// The data lands in a temp file next to dst first and is renamed into place,
// so dst is either the old content or the complete new content.
func CopyFile(fs afero.Fs, src, dst string) (int64, error) {
	in, err := fs.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("copy %s: is a directory", src)
	}

	dir := filepath.Dir(dst)
	if err := EnsureDir(fs, dir); err != nil {
		return 0, err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.part", filepath.Base(dst), uuid.NewString()))

	out, err := fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = fs.Remove(tmp)
		return 0, err
	}

	_ = fs.Chtimes(tmp, info.ModTime(), info.ModTime())
	if err := fs.Rename(tmp, dst); err != nil {
		_ = fs.Remove(tmp)
		return 0, err
	}
	return n, nil
}
