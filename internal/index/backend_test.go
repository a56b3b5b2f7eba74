package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicshelf/pkg/utils"
)

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	store, closeFn, err := NewStore(utils.Config{IndexBackend: utils.BackendJSON, IndexPath: filepath.Join(dir, "c.json")})
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, store)
	assert.NoError(t, closeFn())

	store, closeFn, err = NewStore(utils.Config{IndexBackend: utils.BackendSQLite, IndexPath: filepath.Join(dir, "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	assert.NoError(t, closeFn())

	_, _, err = NewStore(utils.Config{IndexBackend: "mongo"})
	assert.Error(t, err)
}
