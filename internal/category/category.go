package category

import (
	"strings"
	"unicode"
)

// Category names a destination folder under the organized root.
type Category string

const (
	Documents Category = "documents"
	Images    Category = "images"
	Audio     Category = "audio"
	Video     Category = "video"
	Archives  Category = "archives"
	Code      Category = "code"
	Data      Category = "data"
	Downloads Category = "downloads"
	Other     Category = "other"
)

var all = []Category{Documents, Images, Audio, Video, Archives, Code, Data, Downloads, Other}

// All returns the closed category set in prompt order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Names returns the category names joined for prompts ("documents, images, ...").
func Names() string {
	parts := make([]string, len(all))
	for i, c := range all {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, candidate := range all {
		if c == candidate {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Parse extracts a category from a classifier reply. Only the first line and its
// first token are considered; anything outside the closed set becomes Other.
func Parse(raw string) Category {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Other
	}
	if idx := strings.IndexAny(raw, "\r\n"); idx >= 0 {
		raw = raw[:idx]
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Other
	}
	token := strings.ToLower(strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	candidate := Category(token)
	if candidate.Valid() {
		return candidate
	}
	return Other
}
