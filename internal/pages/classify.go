// Package pages turns archive entries into an ordered list of comic pages and
// serves individual page bytes.
package pages

import (
	"path"
	"slices"
	"strings"

	"comicshelf/internal/archive"
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// DefaultContentType is used for entries outside the recognized image set.
const DefaultContentType = "application/octet-stream"

// IsImage reports whether the entry name has a recognized image extension.
func IsImage(name string) bool {
	_, ok := contentTypes[ext(name)]
	return ok
}

// ContentType maps an entry name to its MIME type by extension.
func ContentType(name string) string {
	if ct, ok := contentTypes[ext(name)]; ok {
		return ct
	}
	return DefaultContentType
}

// Classify returns the image entries of an archive in page order: directories
// and non-image entries are dropped and the rest are sorted byte-wise by name.
//
// The result only depends on the entry names, so classifying the same archive
// twice always yields the same page numbering. The input is not modified.
func Classify(entries []archive.Entry) []archive.Entry {
	out := make([]archive.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir || !IsImage(e.Name) {
			continue
		}
		out = append(out, e)
	}

	slices.SortStableFunc(out, func(a, b archive.Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func ext(name string) string {
	return strings.ToLower(path.Ext(name))
}
