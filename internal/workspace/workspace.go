// Package workspace prepares the directories the pipeline reads and writes.
package workspace

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// Change describes what Prepare did to one directory.
type Change struct {
	Path    string
	Created bool
	OldMode fs.FileMode
	NewMode fs.FileMode
}

// Prepare creates every directory that does not exist and sets its
// permission bits to mode. Running it twice changes nothing the second time.
func Prepare(logger *slog.Logger, mode fs.FileMode, dirs ...string) ([]Change, error) {
	var changes []Change

	for _, dir := range dirs {
		if dir == "" {
			continue
		}

		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			if err := os.MkdirAll(dir, mode); err != nil {
				return changes, fmt.Errorf("create %s: %w", dir, err)
			}
			// MkdirAll is subject to umask
			if err := os.Chmod(dir, mode); err != nil {
				return changes, fmt.Errorf("chmod %s: %w", dir, err)
			}
			changes = append(changes, Change{Path: dir, Created: true, NewMode: mode})
			if logger != nil {
				logger.Info("created directory", "path", dir, "mode", mode)
			}

		case err != nil:
			return changes, fmt.Errorf("stat %s: %w", dir, err)

		case !info.IsDir():
			return changes, fmt.Errorf("%s exists and is not a directory", dir)

		case info.Mode().Perm() != mode.Perm():
			if err := os.Chmod(dir, mode); err != nil {
				return changes, fmt.Errorf("chmod %s: %w", dir, err)
			}
			changes = append(changes, Change{Path: dir, OldMode: info.Mode().Perm(), NewMode: mode})
			if logger != nil {
				logger.Info("normalized directory permissions", "path", dir, "from", info.Mode().Perm(), "to", mode)
			}
		}
	}

	return changes, nil
}
