package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"COMICSHELF_COMICS_DIR", "COMICSHELF_DATA_DIR", "COMICSHELF_INDEX_PATH",
		"COMICSHELF_INDEX_BACKEND", "COMICSHELF_COVERS_DIR", "COMICSHELF_COVER_URL_PREFIX",
		"COMICSHELF_HTTP_ADDR", "COMICSHELF_SYNC_ADDR", "COMICSHELF_LOG_LEVEL",
		"COMICSHELF_LOG_FORMAT", "COMICSHELF_COVER_WIDTH", "COMICSHELF_REQUEST_TIMEOUT", "PORT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	dataDir := filepath.Join(home, ".comicshelf")
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "comics.json"), cfg.IndexPath)
	assert.Equal(t, filepath.Join(dataDir, "covers"), cfg.CoversDir)
	assert.Equal(t, BackendJSON, cfg.IndexBackend)
	assert.Equal(t, "/covers", cfg.CoverURLPrefix)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.True(t, filepath.IsAbs(cfg.ComicsDir))
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "comicshelf.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
comics_dir = "/srv/comics"
data_dir = "/var/lib/comicshelf"
index_backend = "sqlite"
cover_url_prefix = "thumbs/"
cover_width = 320
log_level = "debug"
request_timeout = 5
`), 0o644))

	t.Setenv("COMICSHELF_LOG_FORMAT", "json")
	t.Setenv("COMICSHELF_COVER_WIDTH", "200")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/comics", cfg.ComicsDir)
	assert.Equal(t, BackendSQLite, cfg.IndexBackend)
	assert.Equal(t, "/var/lib/comicshelf/comics.db", cfg.IndexPath)
	assert.Equal(t, "/var/lib/comicshelf/covers", cfg.CoversDir)
	assert.Equal(t, "/thumbs", cfg.CoverURLPrefix)
	assert.Equal(t, 200, cfg.CoverWidth)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, BackendJSON, cfg.IndexBackend)
}

func TestLoadConfigPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.HTTPAddr)

	t.Setenv("COMICSHELF_HTTP_ADDR", "127.0.0.1:9000")
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "unknown backend", env: map[string]string{"COMICSHELF_INDEX_BACKEND": "mongo"}},
		{name: "negative width", env: map[string]string{"COMICSHELF_COVER_WIDTH": "-1"}},
		{name: "width not a number", env: map[string]string{"COMICSHELF_COVER_WIDTH": "wide"}},
		{name: "timeout not a number", env: map[string]string{"COMICSHELF_REQUEST_TIMEOUT": "30s"}},
		{name: "negative timeout", file: "request_timeout = -2\n"},
		{name: "broken toml", file: "comics_dir = \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), "c.toml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
			}

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "comics"), expandHome("~/comics"))
	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "~user/x", expandHome("~user/x"))
}
