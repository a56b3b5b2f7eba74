// Package index keeps the comic collection in memory and mirrors every
// change to a durable snapshot.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"comicshelf/pkg/models"
	"comicshelf/pkg/utils"
)

var (
	// ErrCorrupt means the stored snapshot exists but cannot be parsed.
	ErrCorrupt = errors.New("index snapshot corrupt")
	// ErrPersist means the snapshot could not be written; memory is left unchanged.
	ErrPersist = errors.New("index persist failed")
	// ErrDuplicate rejects a record whose id or file name is already indexed.
	ErrDuplicate = errors.New("comic already indexed")
)

// Store persists whole snapshots of the collection.
type Store interface {
	// Load returns the stored records. exists is false when nothing was ever saved.
	Load(ctx context.Context) (records []models.ComicRecord, exists bool, err error)
	// Save replaces the stored snapshot with records.
	Save(ctx context.Context, records []models.ComicRecord) error
}

// Index is the comic collection.
//
// Readers work on an immutable snapshot and never block. Writers are
// serialized, persist the next snapshot first and only then publish it, so a
// failed write never leaves memory ahead of disk.
type Index struct {
	store  Store
	logger *slog.Logger

	mu      sync.Mutex
	records atomic.Pointer[[]models.ComicRecord]
}

func New(store Store, logger *slog.Logger) *Index {
	ix := &Index{store: store, logger: utils.ComponentLogger(logger, "index")}
	empty := make([]models.ComicRecord, 0)
	ix.records.Store(&empty)
	return ix
}

// Load reads the snapshot from the store. A missing snapshot initializes and
// persists an empty collection.
func (ix *Index) Load(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	records, exists, err := ix.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	if !exists {
		records = make([]models.ComicRecord, 0)
		if err := ix.store.Save(ctx, records); err != nil {
			return fmt.Errorf("%w: initialize empty index: %w", ErrPersist, err)
		}
		ix.logger.Info("initialized empty index")
	}

	for i := range records {
		if records[i].Tags == nil {
			records[i].Tags = []string{}
		}
	}
	if records == nil {
		records = make([]models.ComicRecord, 0)
	}

	ix.records.Store(&records)
	ix.logger.Info("loaded index", slog.Int("comics", len(records)))
	return nil
}

// All returns the records in insertion order. The slice is a copy.
func (ix *Index) All() []models.ComicRecord {
	return slices.Clone(*ix.records.Load())
}

func (ix *Index) Len() int {
	return len(*ix.records.Load())
}

func (ix *Index) FindByID(id string) (models.ComicRecord, bool) {
	for _, rec := range *ix.records.Load() {
		if rec.ID == id {
			return rec, true
		}
	}
	return models.ComicRecord{}, false
}

func (ix *Index) FindByFileName(name string) (models.ComicRecord, bool) {
	for _, rec := range *ix.records.Load() {
		if rec.FileName == name {
			return rec, true
		}
	}
	return models.ComicRecord{}, false
}

// Append adds rec and persists the full snapshot as one step.
func (ix *Index) Append(ctx context.Context, rec models.ComicRecord) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := *ix.records.Load()
	for _, existing := range cur {
		if existing.ID == rec.ID || existing.FileName == rec.FileName {
			return fmt.Errorf("%w: %s", ErrDuplicate, rec.FileName)
		}
	}

	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	next := make([]models.ComicRecord, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, rec)

	if err := ix.store.Save(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	ix.records.Store(&next)
	return nil
}
