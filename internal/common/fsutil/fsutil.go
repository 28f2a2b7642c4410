// Package fsutil holds the small path helpers used to locate and watch
// configuration files.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists reports whether path exists. Permission errors count as present.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// FirstExisting returns the first candidate that exists after '~' expansion.
func FirstExisting(candidates ...string) (string, bool) {
	for _, c := range candidates {
		p, err := ExpandHome(c)
		if err != nil || p == "" {
			continue
		}
		if PathExists(p) {
			return p, true
		}
	}
	return "", false
}

// SplitWatch returns the absolute directory to watch for path plus the file
// name to match. Editors replace files by rename, so watchers follow the
// directory rather than the file.
func SplitWatch(path string) (dir, name string, err error) {
	p, err := ExpandHome(path)
	if err != nil {
		return "", "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", "", fmt.Errorf("abs %s: %w", p, err)
	}
	return filepath.Dir(abs), filepath.Base(abs), nil
}
