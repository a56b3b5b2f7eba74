package archive

import (
	"fmt"
	"io"

	"github.com/nwaples/rardecode/v2"
)

// rarReader lists headers once and re-reads the archive sequentially for each
// ReadEntry call since RAR streams cannot seek to an entry.
type rarReader struct {
	path    string
	entries []Entry
}

var _ Reader = &rarReader{}

func openRar(path string) (Reader, error) {
	rc, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf(`open rar file "%s" error: %w`, path, err)
	}
	defer rc.Close()

	r := &rarReader{path: path}
	for {
		fh, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf(`read rar file "%s" error: %w`, path, err)
		}

		r.entries = append(r.entries, Entry{
			Name:  fh.Name,
			IsDir: fh.IsDir,
			Size:  fh.UnPackedSize,
		})
	}

	return r, nil
}

func (r *rarReader) Entries() []Entry {
	return r.entries
}

func (r *rarReader) ReadEntry(name string) ([]byte, error) {
	rc, err := rardecode.OpenReader(r.path)
	if err != nil {
		return nil, fmt.Errorf(`open rar file "%s" error: %w`, r.path, err)
	}
	defer rc.Close()

	for {
		fh, err := rc.Next()
		if err == io.EOF {
			return nil, fmt.Errorf(`%w: "%s"`, ErrEntryNotFound, name)
		}
		if err != nil {
			return nil, fmt.Errorf(`read rar file "%s" error: %w`, r.path, err)
		}
		if fh.IsDir || fh.Name != name {
			continue
		}

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf(`read entry "%s" error: %w`, name, err)
		}
		return data, nil
	}
}

func (r *rarReader) Close() error {
	return nil
}
