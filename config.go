package teal

import (
	"os"
	"path/filepath"
)

// FileExtension is appended to the database name to form the backing file
// name inside the configured directory.
const FileExtension = ".teal"

// Configuration carries the options recognized by Open.
type Configuration struct {
	// Directory is where the database file-set lives. Required; there is no
	// ambient default.
	Directory string

	// Logf receives diagnostic output when set. Nil means silent.
	Logf func(format string, args ...any)

	// Verbose enables per-operation logging through Logf.
	Verbose bool

	// IsTesting trades durability for speed (no fsync, small initial mmap).
	IsTesting bool
}

// DatabasePath returns the full path of the backing store for a database
// with the given name and directory.
func DatabasePath(name, directory string) string {
	return filepath.Join(directory, name+FileExtension)
}

// DatabaseExists reports whether a backing store exists at the computed
// path. It says nothing about whether the file is a valid store.
func DatabaseExists(name, directory string) bool {
	_, err := os.Stat(DatabasePath(name, directory))
	return err == nil
}
