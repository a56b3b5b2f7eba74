package archive

import (
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

type sevenZipReader struct {
	rc      *sevenzip.ReadCloser
	entries []Entry
	files   map[string]*sevenzip.File
}

var _ Reader = &sevenZipReader{}

func openSevenZip(path string) (Reader, error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf(`open 7z file "%s" error: %w`, path, err)
	}

	s := &sevenZipReader{
		rc:      rc,
		entries: make([]Entry, 0, len(rc.File)),
		files:   make(map[string]*sevenzip.File, len(rc.File)),
	}
	for _, f := range rc.File {
		s.entries = append(s.entries, Entry{
			Name:  f.Name,
			IsDir: f.FileInfo().IsDir(),
			Size:  int64(f.UncompressedSize),
		})
		if _, dup := s.files[f.Name]; !dup {
			s.files[f.Name] = f
		}
	}

	return s, nil
}

func (s *sevenZipReader) Entries() []Entry {
	return s.entries
}

func (s *sevenZipReader) ReadEntry(name string) ([]byte, error) {
	f, ok := s.files[name]
	if !ok || f.FileInfo().IsDir() {
		return nil, fmt.Errorf(`%w: "%s"`, ErrEntryNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf(`open entry "%s" error: %w`, name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf(`read entry "%s" error: %w`, name, err)
	}
	return data, nil
}

func (s *sevenZipReader) Close() error {
	return s.rc.Close()
}
