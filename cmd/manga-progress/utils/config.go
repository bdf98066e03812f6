package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Host string `yaml:"host" env:"HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"PORT" env-default:"1506"`

	// StaticDir holds the bookshelf and reader pages and the client script
	StaticDir string `yaml:"static_dir" env:"MANGA_PROGRESS_STATIC_DIR" env-default:"."`
	// MangaRoot is served under /manga; defaults to <StaticDir>/manga
	MangaRoot string `yaml:"manga_root" env:"MANGA_PROGRESS_MANGA_ROOT"`
	// ScanRoot is walked by the scan command; defaults to MangaRoot
	ScanRoot string `yaml:"scan_root" env:"MANGA_PROGRESS_SCAN_ROOT"`
	// DataDir holds progress.json, series_order.json and bookmarks.json
	DataDir string `yaml:"data_dir" env:"MANGA_PROGRESS_DATA_DIR" env-default:"."`

	ScriptSrc        string        `yaml:"script_src" env:"MANGA_PROGRESS_SCRIPT_SRC" env-default:"/static/mokuro_progress.js"`
	DefaultCover     string        `yaml:"default_cover" env:"MANGA_PROGRESS_DEFAULT_COVER" env-default:"0.jpg"`
	BookshelfPage    string        `yaml:"bookshelf_page" env:"MANGA_PROGRESS_BOOKSHELF_PAGE" env-default:"bookshelf_deluxe_server.html"`
	ReaderPage       string        `yaml:"reader_page" env:"MANGA_PROGRESS_READER_PAGE" env-default:"reader.html"`
	ImageCacheMaxAge time.Duration `yaml:"image_cache_max_age" env:"MANGA_PROGRESS_IMAGE_CACHE_MAX_AGE" env-default:"24h"`

	// SessionKey signs the last-read cookie; a random key is used when empty
	SessionKey string `yaml:"session_key" env:"MANGA_PROGRESS_SESSION_KEY"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"auto"`
}

// Data file names inside DataDir
const (
	ProgressFileName    = "progress.json"
	SeriesOrderFileName = "series_order.json"
	BookmarksFileName   = "bookmarks.json"
)

// LoadConfig reads the YAML file at path when it exists, then applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig

	fileExists := false
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileExists = true
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	if fileExists {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.MangaRoot == "" {
		c.MangaRoot = filepath.Join(c.StaticDir, "manga")
	}
	if c.ScanRoot == "" {
		c.ScanRoot = c.MangaRoot
	}
}

// Validate checks values that would make the server unusable
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}
	if c.ImageCacheMaxAge < 0 {
		return errors.New("image cache max age must not be negative")
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// ProgressFile returns the location of progress.json
func (c *AppConfig) ProgressFile() string {
	return filepath.Join(c.DataDir, ProgressFileName)
}

// SeriesOrderFile returns the location of series_order.json
func (c *AppConfig) SeriesOrderFile() string {
	return filepath.Join(c.DataDir, SeriesOrderFileName)
}

// BookmarksFile returns the location of bookmarks.json
func (c *AppConfig) BookmarksFile() string {
	return filepath.Join(c.DataDir, BookmarksFileName)
}

// MissingDirs lists configured directories that do not exist. They are reported
// as warnings; the server keeps running without them.
func (c *AppConfig) MissingDirs() []string {
	var missing []string
	for _, dir := range []string{c.StaticDir, c.MangaRoot, c.ScanRoot} {
		if !DirExists(dir) {
			missing = append(missing, dir)
		}
	}
	return missing
}
