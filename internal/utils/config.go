package utils

import (
	"os"
	"path/filepath"
)

// DataDirName is the per-user directory holding the session file and keys.
const DataDirName = ".recolector"

// GetDataDir returns the directory used for persisted client state.
// An explicit dir wins; otherwise ~/.recolector, falling back to the temp dir.
func GetDataDir(dir string) string {
	if dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), DataDirName)
	}
	return filepath.Join(home, DataDirName)
}

// EnsureDir creates dir with owner-only permissions.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}
