package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies src to dest, creating dest's directory.
func CopyFile(src string, dest string) error {
	src = filepath.Clean(src)
	dest = filepath.Clean(dest)
	if src == "" || dest == "" {
		return errors.New("copy file: missing src/dest")
	}
	in, err := os.Open(src)
	if err != nil {
		return IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return IOError{Op: "create directory", Path: filepath.Dir(dest), Err: err}
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return IOError{Op: "create", Path: dest, Err: err}
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return IOError{Op: "copy", Path: dest, Err: err}
	}
	if err := out.Close(); err != nil {
		return IOError{Op: "close", Path: dest, Err: err}
	}
	return nil
}

// atomicWriteFile writes b to a temp file in dir and renames it over path, so readers
// see either the old or the new content.
func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return IOError{Op: "write", Path: path, Err: err}
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return IOError{Op: "write", Path: path, Err: err}
	}
	_ = os.Chmod(tmp, perm)
	if err := os.Rename(tmp, path); err != nil {
		return IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// writeWithBackup keeps the previous content at path+".bak" before replacing path.
// A failed backup does not block the write.
func writeWithBackup(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return IOError{Op: "create directory", Path: dir, Err: err}
	}
	base := filepath.Base(path)
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, base+".bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, base+".*.tmp", path, b, 0o644)
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
