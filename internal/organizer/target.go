package organizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"filesort/internal/fileutil"
)

const (
	collisionStampLayout = "20060102_150405"
	maxCollisionAttempts = 10000
)

// resolveTarget picks a path inside dir for name that does not exist yet. The
// plain name is preferred; on collision the timestamp of now is appended to
// the stem, followed by a counter if that name is also taken.
func resolveTarget(dir, name string, now time.Time) (string, error) {
	candidate := filepath.Join(dir, name)
	if !fileutil.Exists(candidate) {
		return candidate, nil
	}

	stem, ext := splitName(name)
	stamped := stem + "_" + now.Format(collisionStampLayout)
	candidate = filepath.Join(dir, stamped+ext)
	if !fileutil.Exists(candidate) {
		return candidate, nil
	}
	for attempt := 1; attempt <= maxCollisionAttempts; attempt++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stamped, attempt, ext))
		if !fileutil.Exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted collision names for %s in %s", name, dir)
}

// splitName separates the final extension. Dotfiles such as ".bashrc" have no
// extension.
func splitName(name string) (string, string) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		return name, ""
	}
	return stem, ext
}
