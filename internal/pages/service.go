package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"comicshelf/internal/archive"
	"comicshelf/pkg/models"
	"comicshelf/pkg/utils"
)

var (
	ErrComicNotFound    = errors.New("comic not found")
	ErrArchiveMissing   = errors.New("archive missing on disk")
	ErrInvalidPageIndex = errors.New("invalid page index")
)

// Finder resolves comic records by id.
type Finder interface {
	FindByID(id string) (models.ComicRecord, bool)
}

// Page is the content of a single page.
type Page struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service reads pages straight from the archives on disk. Nothing is cached
// between calls; the page list is recomputed from the live archive every time.
type Service struct {
	Comics Finder
	Open   func(path string) (archive.Reader, error)
	Logger *slog.Logger
}

func NewService(comics Finder, logger *slog.Logger) *Service {
	return &Service{
		Comics: comics,
		Open:   archive.Open,
		Logger: utils.ComponentLogger(logger, "pages"),
	}
}

// GetPage returns page number index (zero-based) of the comic with the given id.
//
// The stored page count is never used for bounds checking: the archive may have
// changed since it was indexed.
func (s *Service) GetPage(ctx context.Context, id string, index int) (*Page, error) {
	rec, ok := s.Comics.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComicNotFound, id)
	}

	if _, err := os.Stat(rec.FilePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveMissing, rec.FilePath)
		}
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := s.Open(rec.FilePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entries := Classify(r.Entries())
	if index < 0 || index >= len(entries) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidPageIndex, index, len(entries))
	}

	entry := entries[index]
	data, err := r.ReadEntry(entry.Name)
	if err != nil {
		return nil, fmt.Errorf("read page %d of %s: %w", index, rec.FileName, err)
	}

	if len(entries) != rec.PageCount {
		s.Logger.Debug("archive page count differs from index",
			slog.String("comic_id", rec.ID),
			slog.Int("indexed", rec.PageCount),
			slog.Int("live", len(entries)))
	}

	return &Page{
		Name:        entry.Name,
		ContentType: ContentType(entry.Name),
		Data:        data,
	}, nil
}
