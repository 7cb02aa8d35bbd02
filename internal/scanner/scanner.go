package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Scan returns the absolute paths of regular files directly under sourceDir,
// sorted by name. Entries named logName and the destinationRoot itself are
// excluded, as are directories and symlinks. The result is a snapshot: files
// created afterwards are not picked up by the run that called Scan.
func Scan(sourceDir, destinationRoot, logName string) ([]string, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	destAbs := ""
	if destinationRoot != "" {
		if abs, err := filepath.Abs(destinationRoot); err == nil {
			destAbs = filepath.Clean(abs)
		}
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if logName != "" && name == logName {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		full := filepath.Join(sourceDir, name)
		if destAbs != "" {
			if abs, err := filepath.Abs(full); err == nil && filepath.Clean(abs) == destAbs {
				continue
			}
		}
		paths = append(paths, full)
	}
	sort.Strings(paths)
	return paths, nil
}
