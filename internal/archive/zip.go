package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

type zipReader struct {
	rc      *zip.ReadCloser
	entries []Entry
	files   map[string]*zip.File
}

var _ Reader = &zipReader{}

func openZip(path string) (Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf(`open zip file "%s" error: %w`, path, err)
	}

	z := &zipReader{
		rc:      rc,
		entries: make([]Entry, 0, len(rc.File)),
		files:   make(map[string]*zip.File, len(rc.File)),
	}
	for _, f := range rc.File {
		z.entries = append(z.entries, Entry{
			Name:  f.Name,
			IsDir: f.FileInfo().IsDir(),
			Size:  int64(f.UncompressedSize64),
		})
		if _, dup := z.files[f.Name]; !dup {
			z.files[f.Name] = f
		}
	}

	return z, nil
}

func (z *zipReader) Entries() []Entry {
	return z.entries
}

func (z *zipReader) ReadEntry(name string) ([]byte, error) {
	f, ok := z.files[name]
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

func (z *zipReader) Close() error {
	return z.rc.Close()
}
