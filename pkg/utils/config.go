package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds server settings. Zero values are filled from DefaultConfig.
type Config struct {
	ComicsDir      string `toml:"comics_dir"`
	DataDir        string `toml:"data_dir"`
	IndexPath      string `toml:"index_path"`
	IndexBackend   string `toml:"index_backend"`
	CoversDir      string `toml:"covers_dir"`
	CoverURLPrefix string `toml:"cover_url_prefix"`
	CoverWidth     int    `toml:"cover_width"`
	HTTPAddr       string `toml:"http_addr"`
	SyncAddr       string `toml:"sync_addr"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	RequestTimeout int    `toml:"request_timeout"` // seconds, 0 disables
}

func DefaultConfig() Config {
	// local default: ~/.comicshelf
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}

	return Config{
		ComicsDir:      "comics",
		DataDir:        filepath.Join(home, ".comicshelf"),
		IndexBackend:   BackendJSON,
		CoversDir:      "covers",
		CoverURLPrefix: "/covers",
		HTTPAddr:       ":3000",
		LogLevel:       "info",
		LogFormat:      "console",
		RequestTimeout: 30,
	}
}

// LoadConfig builds the config from defaults, the optional TOML file at path,
// and COMICSHELF_* environment variables, in that order of precedence.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"COMICSHELF_COMICS_DIR":       &cfg.ComicsDir,
		"COMICSHELF_DATA_DIR":         &cfg.DataDir,
		"COMICSHELF_INDEX_PATH":       &cfg.IndexPath,
		"COMICSHELF_INDEX_BACKEND":    &cfg.IndexBackend,
		"COMICSHELF_COVERS_DIR":       &cfg.CoversDir,
		"COMICSHELF_COVER_URL_PREFIX": &cfg.CoverURLPrefix,
		"COMICSHELF_HTTP_ADDR":        &cfg.HTTPAddr,
		"COMICSHELF_SYNC_ADDR":        &cfg.SyncAddr,
		"COMICSHELF_LOG_LEVEL":        &cfg.LogLevel,
		"COMICSHELF_LOG_FORMAT":       &cfg.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	// PORT wins over the default bind but not over an explicit address.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && os.Getenv("COMICSHELF_HTTP_ADDR") == "" {
		cfg.HTTPAddr = ":" + port
	}

	if v := strings.TrimSpace(os.Getenv("COMICSHELF_COVER_WIDTH")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("COMICSHELF_COVER_WIDTH: %w", err)
		}
		cfg.CoverWidth = n
	}
	if v := strings.TrimSpace(os.Getenv("COMICSHELF_REQUEST_TIMEOUT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("COMICSHELF_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = n
	}
	return nil
}

func (c *Config) normalize() error {
	c.IndexBackend = strings.ToLower(strings.TrimSpace(c.IndexBackend))
	switch c.IndexBackend {
	case "":
		c.IndexBackend = BackendJSON
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("index_backend: unsupported value %q", c.IndexBackend)
	}

	if c.CoverWidth < 0 {
		return fmt.Errorf("cover_width must be >= 0, got %d", c.CoverWidth)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be >= 0, got %d", c.RequestTimeout)
	}

	c.CoverURLPrefix = "/" + strings.Trim(c.CoverURLPrefix, "/")

	var err error
	if c.ComicsDir, err = absPath(expandHome(c.ComicsDir)); err != nil {
		return fmt.Errorf("comics_dir: %w", err)
	}
	if c.DataDir, err = absPath(expandHome(c.DataDir)); err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	if strings.TrimSpace(c.IndexPath) == "" {
		c.IndexPath = "comics.json"
		if c.IndexBackend == BackendSQLite {
			c.IndexPath = "comics.db"
		}
	}
	c.IndexPath = underDir(c.DataDir, expandHome(c.IndexPath))
	c.CoversDir = underDir(c.DataDir, expandHome(c.CoversDir))
	return nil
}

// Timeout bounds the archive work of one API request: a page read, or the
// reconcile pass that listing comics triggers.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func absPath(p string) (string, error) {
	if p == "" {
		return "", errors.New("path is empty")
	}
	return filepath.Abs(p)
}

func underDir(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
