// Package filex manages the local spool directory for uploaded files.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureSubdDir creates dirName (relative to the working directory unless
// absolute) and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// SpoolFile is a buffered upload on local disk.
type SpoolFile struct {
	Path string
	Size int64
}

// Open reopens the spooled file for reading.
func (f *SpoolFile) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// Remove deletes the spooled file. Removing an already removed file is not an error.
func (f *SpoolFile) Remove() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Spool copies r into a new temp file inside dir. On failure nothing is left behind.
func Spool(dir string, r io.Reader) (*SpoolFile, error) {
	tmp, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("spool: %w", err)
	}

	return &SpoolFile{Path: tmp.Name(), Size: n}, nil
}
