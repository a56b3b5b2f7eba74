// Package archive reads comic book archives without extracting them.
//
// Each supported container format implements Reader. Entries are listed once
// when the archive is opened; entry contents are only read on request.
package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnreadable is returned when an archive cannot be opened or parsed.
	ErrUnreadable = errors.New("archive unreadable")
	// ErrEntryNotFound is returned by ReadEntry for names not present in the archive.
	ErrEntryNotFound = errors.New("entry not found in archive")
)

// Entry is one file or directory record inside an archive.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64 // declared uncompressed size
}

// Reader gives access to the entries of an opened archive.
//
// Readers are not safe for concurrent use.
type Reader interface {
	// Entries returns the entries in archive order.
	Entries() []Entry
	// ReadEntry returns the full content of the named entry.
	ReadEntry(name string) ([]byte, error)
	Close() error
}

type openFunc func(path string) (Reader, error)

var openers = map[string]openFunc{
	".cbz": openZip,
	".zip": openZip,
	".cbr": openRar,
	".rar": openRar,
	".cb7": openSevenZip,
	".7z":  openSevenZip,
	".cbt": openGeneric,
	".tar": openGeneric,
}

// IsArchive reports whether name carries a recognized archive extension.
func IsArchive(name string) bool {
	_, ok := openers[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Open opens the archive at path.
//
// The codec is picked from the file extension. Comic archives are often
// mislabelled (a .cbz that is really a RAR), so when that codec fails the file
// is identified by content instead. Every failure wraps ErrUnreadable.
func Open(path string) (Reader, error) {
	open, ok := openers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		open = openGeneric
	}

	r, err := open(path)
	if err == nil {
		return r, nil
	}

	if ok {
		if r, gerr := openGeneric(path); gerr == nil {
			return r, nil
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
}
