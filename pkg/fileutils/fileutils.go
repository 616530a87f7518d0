package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/bmatcuk/doublestar/v4"
)

// CheckIfExists checks if file or directory exists in the given path.
func CheckIfExists(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FileSize returns the size in bytes of the file at path.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}
	return info.Size(), nil
}

// ListDir returns the sorted names of the entries in dir.
// Directories carry a trailing separator.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += string(filepath.Separator)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// FindFirst returns the first regular file under root matching the doublestar
// pattern, as a path joined with root. Matches are taken in lexical order.
// found is false when nothing matches.
func FindFirst(root, pattern string) (path string, found bool, err error) {
	if !doublestar.ValidatePattern(pattern) {
		return "", false, fmt.Errorf("invalid search pattern %q", pattern)
	}
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern))
	if err != nil {
		return "", false, err
	}
	sort.Strings(matches)
	for _, match := range matches {
		candidate := filepath.Join(root, filepath.FromSlash(match))
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return candidate, true, nil
	}
	return "", false, nil
}

// AppendLines appends each line followed by a newline to the file at path,
// creating the file if needed.
func AppendLines(path string, lines ...string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, global.FilePermissions)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()
	for _, line := range lines {
		if _, err = fmt.Fprintln(f, line); err != nil {
			return err
		}
	}
	return nil
}

// CreateIfNotExists creates a file or a directory only if it does not already exist.
func CreateIfNotExists(path string, isDir bool) error {
	exists, err := CheckIfExists(path)
	if err != nil {
		return err
	}
	if !exists {
		if isDir {
			return os.MkdirAll(path, global.DirectoryPermissions)
		}
		if err := os.MkdirAll(filepath.Dir(path), global.DirectoryPermissions); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE, global.FilePermissions)
		if err != nil {
			return err
		}
		f.Close()
	}

	return nil
}
