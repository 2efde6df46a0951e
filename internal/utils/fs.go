package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// AbsPath returns the absolute form of path, or path itself if it cannot be resolved
func AbsPath(path string) string {
	abs, err := filepath.Abs(ExpandPath(path))
	if err != nil {
		return path
	}
	return abs
}
