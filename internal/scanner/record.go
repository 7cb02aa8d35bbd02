package scanner

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UnknownMIME is reported when the extension maps to no known type.
const UnknownMIME = "unknown"

// FileRecord is the metadata snapshot of one file. It is created per file and
// discarded after the file is moved.
type FileRecord struct {
	Path      string
	Name      string
	Extension string
	Size      int64
	Created   time.Time
	MimeType  string
}

// CreatedDate renders the creation time as YYYY-MM-DD in local time.
func (r FileRecord) CreatedDate() string {
	if r.Created.IsZero() {
		return ""
	}
	return r.Created.Local().Format(time.DateOnly)
}

// Stem returns the file name without its extension.
func (r FileRecord) Stem() string {
	return strings.TrimSuffix(r.Name, r.Extension)
}

// Inspect stats path and builds its FileRecord.
func Inspect(path string) (FileRecord, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return FileRecord{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return FileRecord{}, fmt.Errorf("inspect %s: not a regular file", path)
	}
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return FileRecord{
		Path:      path,
		Name:      name,
		Extension: ext,
		Size:      info.Size(),
		Created:   creationTime(path, info),
		MimeType:  mimeType(ext),
	}, nil
}

func mimeType(ext string) string {
	if ext == "" {
		return UnknownMIME
	}
	value := mime.TypeByExtension(strings.ToLower(ext))
	if value == "" {
		return UnknownMIME
	}
	if mediaType, _, err := mime.ParseMediaType(value); err == nil {
		return mediaType
	}
	return value
}
