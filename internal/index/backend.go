package index

import (
	"fmt"

	"comicshelf/pkg/database"
	"comicshelf/pkg/utils"
)

// NewStore builds the Store selected by cfg.IndexBackend at cfg.IndexPath.
// The returned close func releases whatever the store holds open.
func NewStore(cfg utils.Config) (Store, func() error, error) {
	switch cfg.IndexBackend {
	case utils.BackendSQLite:
		db, err := database.Open(database.Config{Path: cfg.IndexPath})
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate index db: %w", err)
		}
		return NewSQLiteStore(db), db.Close, nil
	case utils.BackendJSON, "":
		return NewJSONStore(cfg.IndexPath), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported index backend %q", cfg.IndexBackend)
	}
}
