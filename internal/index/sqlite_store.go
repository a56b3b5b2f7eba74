package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"comicshelf/pkg/models"
)

// SQLiteStore keeps the snapshot in the comics table. Save rewrites the whole
// table inside one transaction; position preserves insertion order.
type SQLiteStore struct {
	DB *sql.DB
}

var _ Store = &SQLiteStore{}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

func (s *SQLiteStore) Load(ctx context.Context) ([]models.ComicRecord, bool, error) {
	var initialized string
	err := s.DB.QueryRowContext(ctx, `
		SELECT value FROM index_meta WHERE key = 'initialized'
	`).Scan(&initialized)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read index meta: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, file_name, file_path, title, cover, page_count, added_at, tags
		FROM comics
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, true, fmt.Errorf("list comics: %w", err)
	}
	defer rows.Close()

	out := make([]models.ComicRecord, 0)
	for rows.Next() {
		var (
			rec      models.ComicRecord
			addedAt  string
			tagsJSON string
		)
		if err := rows.Scan(
			&rec.ID, &rec.FileName, &rec.FilePath, &rec.Title, &rec.Cover, &rec.PageCount, &addedAt, &tagsJSON,
		); err != nil {
			return nil, true, fmt.Errorf("scan comic row: %w", err)
		}

		if rec.AddedAt, err = time.Parse(time.RFC3339Nano, addedAt); err != nil {
			return nil, true, fmt.Errorf("%w: added_at of %s: %w", ErrCorrupt, rec.ID, err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &rec.Tags); err != nil {
			return nil, true, fmt.Errorf("%w: tags of %s: %w", ErrCorrupt, rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, true, fmt.Errorf("rows err: %w", err)
	}

	return out, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, records []models.ComicRecord) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comics`); err != nil {
		return fmt.Errorf("clear comics: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comics (position, id, file_name, file_path, title, cover, page_count, added_at, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		tags := rec.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", rec.ID, err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			i,
			rec.ID,
			rec.FileName,
			rec.FilePath,
			rec.Title,
			rec.Cover,
			rec.PageCount,
			rec.AddedAt.UTC().Format(time.RFC3339Nano),
			string(tagsJSON),
		); err != nil {
			return fmt.Errorf("insert comic %s: %w", rec.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES ('initialized', ?)
		ON CONFLICT(key) DO NOTHING
	`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("mark index initialized: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
