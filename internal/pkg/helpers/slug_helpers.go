package helpers

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// DefaultSlug is used when a title has no sluggable characters.
const DefaultSlug = "course"

// Slugify derives the base slug of a title.
func Slugify(title string) string {
	s := slug.Make(title)
	if s == "" {
		return DefaultSlug
	}
	return s
}

// NextSlug returns base when it is free, otherwise base-N with N one past
// the highest numeric suffix already taken.
func NextSlug(base string, taken []string) string {
	baseTaken := false
	highest := 0
	for _, existing := range taken {
		if existing == base {
			baseTaken = true
			continue
		}

		suffix, ok := strings.CutPrefix(existing, base+"-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}

	if !baseTaken {
		return base
	}
	return base + "-" + strconv.Itoa(highest+1)
}

// ParseID parses a positive numeric path key.
func ParseID(key string) (int64, bool) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
