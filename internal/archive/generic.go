package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
)

// errStopWalk ends an extraction walk once the wanted entry was read.
var errStopWalk = errors.New("stop walk")

// genericReader handles any format mholt/archives can identify by content:
// tar (.cbt) and its compressed variants, plus mislabelled zip and rar files.
type genericReader struct {
	path      string
	extractor archives.Extractor
	entries   []Entry
}

var _ Reader = &genericReader{}

func openGeneric(path string) (Reader, error) {
	ctx := context.Background()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf(`open file "%s" error: %w`, path, err)
	}
	defer f.Close()

	format, _, err := archives.Identify(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf(`identify archive "%s" error: %w`, path, err)
	}

	ex, ok := format.(archives.Extractor)
	if !ok {
		return nil, fmt.Errorf(`"%s" is not an extractable archive`, path)
	}

	g := &genericReader{path: path, extractor: ex}
	if err = g.walk(ctx, func(_ context.Context, info archives.FileInfo) error {
		g.entries = append(g.entries, Entry{
			Name:  info.NameInArchive,
			IsDir: info.IsDir(),
			Size:  info.Size(),
		})
		return nil
	}); err != nil {
		return nil, fmt.Errorf(`list archive "%s" error: %w`, path, err)
	}

	return g, nil
}

func (g *genericReader) walk(ctx context.Context, handle archives.FileHandler) error {
	f, err := os.Open(g.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return g.extractor.Extract(ctx, f, handle)
}

func (g *genericReader) Entries() []Entry {
	return g.entries
}

func (g *genericReader) ReadEntry(name string) ([]byte, error) {
	var data []byte

	err := g.walk(context.Background(), func(_ context.Context, info archives.FileInfo) error {
		if info.IsDir() || info.NameInArchive != name {
			return nil
		}

		rc, err := info.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		if data, err = io.ReadAll(rc); err != nil {
			return err
		}
		return errStopWalk
	})

	switch {
	case errors.Is(err, errStopWalk):
		return data, nil
	case err != nil:
		return nil, fmt.Errorf(`read entry "%s" error: %w`, name, err)
	default:
		return nil, fmt.Errorf(`%w: "%s"`, ErrEntryNotFound, name)
	}
}

func (g *genericReader) Close() error {
	return nil
}
