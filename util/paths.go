package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandTildeWith replaces a leading ~ in path with home.
func ExpandTildeWith(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// ExpandTilde replaces a leading ~ in path with the current user's home directory.
func ExpandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory to expand path: %w", err)
	}
	return ExpandTildeWith(path, home), nil
}
