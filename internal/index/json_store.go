package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"comicshelf/pkg/models"
	"comicshelf/pkg/utils"
)

// JSONStore keeps the snapshot as an indented JSON array in a single file.
type JSONStore struct {
	Path string
}

var _ Store = &JSONStore{}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{Path: path}
}

func (s *JSONStore) Load(_ context.Context) ([]models.ComicRecord, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read index file: %w", err)
	}

	var records []models.ComicRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, true, fmt.Errorf("%w: parse %s: %w", ErrCorrupt, s.Path, err)
	}
	return records, true, nil
}

func (s *JSONStore) Save(_ context.Context, records []models.ComicRecord) error {
	if records == nil {
		records = []models.ComicRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	if err := utils.WriteFileAtomic(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	return nil
}
