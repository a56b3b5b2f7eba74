// Package scanner reconciles the comics directory against the index.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"comicshelf/internal/archive"
	"comicshelf/internal/covers"
	"comicshelf/internal/index"
	"comicshelf/internal/pages"
	"comicshelf/pkg/models"
	"comicshelf/pkg/utils"
)

// ErrNoImageEntries means the archive holds no recognized page images. Such
// archives are never indexed and are looked at again on every pass.
var ErrNoImageEntries = errors.New("archive has no image entries")

// Notifier receives an event for every comic added to the index.
type Notifier interface {
	BroadcastJSON(v any)
}

// ComicAdded is broadcast after a new record has been persisted.
type ComicAdded struct {
	Type      string    `json:"type"` // "comic.added"
	ComicID   string    `json:"comic_id"`
	Title     string    `json:"title"`
	PageCount int       `json:"page_count"`
	At        time.Time `json:"at"`
}

// Result summarizes one reconciliation pass.
type Result struct {
	Added   []models.ComicRecord
	Skipped int // archives that could not be indexed this pass
}

// Scanner finds archives in Dir that have no record yet and indexes them.
type Scanner struct {
	Dir      string
	Index    *index.Index
	Covers   *covers.Extractor
	Open     func(path string) (archive.Reader, error)
	Notifier Notifier
	Logger   *slog.Logger

	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	group    singleflight.Group
	progress rate.Sometimes
}

func New(dir string, ix *index.Index, cv *covers.Extractor, logger *slog.Logger) *Scanner {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Scanner{
		Dir:      dir,
		Index:    ix,
		Covers:   cv,
		Open:     archive.Open,
		Logger:   utils.ComponentLogger(logger, "scanner"),
		now:      time.Now,
		newID:    uuid.NewString,
		progress: rate.Sometimes{First: 1, Interval: 5 * time.Second},
	}
}

// Reconcile indexes every archive in Dir that is not indexed yet.
//
// Passes never overlap. A caller arriving while a pass is running waits for
// it and receives the same Result. A broken archive is skipped and does not
// stop the pass; only failing to read Dir itself is returned as an error.
//
// The pass is detached from ctx: a caller whose ctx ends gets ctx.Err() back
// right away while the pass runs to completion for everyone else.
func (s *Scanner) Reconcile(ctx context.Context) (Result, error) {
	ch := s.group.DoChan("reconcile", func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.reconcile(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	}
}

func (s *Scanner) reconcile(ctx context.Context) (Result, error) {
	var res Result

	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		return res, fmt.Errorf("read comics dir: %w", err)
	}

	candidates := make([]os.DirEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || !archive.IsArchive(de.Name()) {
			continue
		}
		if _, ok := s.Index.FindByFileName(de.Name()); ok {
			continue
		}
		candidates = append(candidates, de)
	}

	for i, de := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		name := de.Name()
		rec, err := s.indexArchive(ctx, name)
		if err != nil {
			// keep going: one broken archive should not stop the pass
			res.Skipped++
			s.Logger.Warn("skipped archive", slog.String("file", name), slog.Any("error", err))
			continue
		}

		res.Added = append(res.Added, rec)
		s.logAdded(rec, de)
		s.progress.Do(func() {
			s.Logger.Info("scan progress", slog.Int("done", i+1), slog.Int("pending", len(candidates)))
		})

		if s.Notifier != nil {
			s.Notifier.BroadcastJSON(ComicAdded{
				Type:      "comic.added",
				ComicID:   rec.ID,
				Title:     rec.Title,
				PageCount: rec.PageCount,
				At:        rec.AddedAt,
			})
		}
	}

	if len(res.Added) > 0 || res.Skipped > 0 {
		s.Logger.Info("reconciled",
			slog.Int("added", len(res.Added)),
			slog.Int("skipped", res.Skipped),
			slog.Int("total", s.Index.Len()))
	}
	return res, nil
}

// indexArchive builds, covers and appends the record for one archive. Nothing
// reaches the index unless every step succeeded.
func (s *Scanner) indexArchive(ctx context.Context, name string) (models.ComicRecord, error) {
	fullPath := filepath.Join(s.Dir, name)

	r, err := s.Open(fullPath)
	if err != nil {
		return models.ComicRecord{}, err
	}
	defer r.Close()

	entries := pages.Classify(r.Entries())
	if len(entries) == 0 {
		return models.ComicRecord{}, ErrNoImageEntries
	}

	rec := models.ComicRecord{
		ID:        s.newID(),
		FileName:  name,
		FilePath:  fullPath,
		Title:     Title(name),
		PageCount: len(entries),
		AddedAt:   s.now().UTC(),
		Tags:      []string{},
	}

	rec.Cover, err = s.Covers.Extract(r, entries, rec.ID)
	if err != nil {
		return models.ComicRecord{}, err
	}

	if err := s.Index.Append(ctx, rec); err != nil {
		if rerr := s.Covers.Remove(rec.Cover); rerr != nil {
			s.Logger.Warn("remove orphaned cover", slog.String("cover", rec.Cover), slog.Any("error", rerr))
		}
		return models.ComicRecord{}, err
	}
	return rec, nil
}

func (s *Scanner) logAdded(rec models.ComicRecord, de os.DirEntry) {
	attrs := []any{
		slog.String("comic_id", rec.ID),
		slog.String("file", rec.FileName),
		slog.Int("pages", rec.PageCount),
	}
	if info, err := de.Info(); err == nil {
		attrs = append(attrs, slog.String("size", humanize.Bytes(uint64(info.Size()))))
	}
	s.Logger.Info("indexed comic", attrs...)
}

// Title derives a display title from an archive file name: the extension is
// dropped and the rest is NFC-normalized.
func Title(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return norm.NFC.String(base)
}
