package library

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultCover is used when a volume has no image folder or the folder holds no images.
const DefaultCover = "0.jpg"

var coverExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Volume is one HTML reader page found on disk.
type Volume struct {
	Series string
	Name   string // file stem of the HTML page
	Path   string // ./manga/<series>/<file>.html
	File   string // location on disk
	Cover  string
}

// Scan is the result of walking a library root.
type Scan struct {
	Series  []string
	Volumes []Volume
	// Errors holds per-directory failures that did not stop the walk.
	Errors []error
	// Unreadable lists series whose folder could not be listed. Their volumes are
	// unknown, not gone.
	Unreadable []string
}

// Library walks a root of series folders. Each series folder holds volume HTML
// pages and, per volume, an optional image folder named after the page's stem.
type Library struct {
	Root         string
	DefaultCover string
	Logger       *slog.Logger
}

// New creates a Library rooted at root.
func New(root string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		Root:         root,
		DefaultCover: DefaultCover,
		Logger:       logger,
	}
}

// ListSeries returns the names of all series folders under the root, sorted.
func (l *Library) ListSeries() ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, fmt.Errorf("read library root %s: %w", l.Root, err)
	}

	series := make([]string, 0, len(entries))
	for _, entry := range entries {
		if l.isSeriesDir(entry) {
			series = append(series, entry.Name())
		}
	}
	return series, nil
}

// isSeriesDir follows symlinks. A link whose target cannot be resolved, such as a
// folder on an unmounted disk, still counts so its volumes are reported unreadable
// rather than removed.
func (l *Library) isSeriesDir(entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir()
	}
	info, err := os.Stat(filepath.Join(l.Root, entry.Name()))
	if err != nil {
		return true
	}
	return info.IsDir()
}

// Scan lists every series folder and the volumes inside it. Series and volumes are
// returned in lexicographic order so repeated scans of the same tree are identical.
// Only an unreadable root is an error; unreadable series or image folders are
// collected in Scan.Errors.
func (l *Library) Scan() (*Scan, error) {
	series, err := l.ListSeries()
	if err != nil {
		return nil, err
	}

	result := &Scan{Series: series, Volumes: []Volume{}}
	for _, name := range series {
		volumes, err := l.scanSeries(name)
		if err != nil {
			l.Logger.Warn("skipping unreadable series folder", "series", name, "error", err)
			result.Errors = append(result.Errors, err)
			result.Unreadable = append(result.Unreadable, name)
			continue
		}
		result.Volumes = append(result.Volumes, volumes...)
	}

	l.Logger.Debug("library scanned", "root", l.Root, "series", len(result.Series), "volumes", len(result.Volumes))
	return result, nil
}

func (l *Library) scanSeries(series string) ([]Volume, error) {
	dir := filepath.Join(l.Root, series)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read series folder %s: %w", dir, err)
	}

	var volumes []Volume
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".html" {
			continue
		}
		stem := strings.TrimSuffix(name, ".html")
		cover, err := l.ResolveCover(filepath.Join(dir, stem))
		if err != nil {
			l.Logger.Warn("cannot read image folder, using default cover", "series", series, "volume", stem, "error", err)
		}
		volumes = append(volumes, Volume{
			Series: series,
			Name:   stem,
			Path:   VolumePath(series, name),
			File:   filepath.Join(dir, name),
			Cover:  cover,
		})
	}
	return volumes, nil
}

// ResolveCover returns the lexicographically first .jpg/.jpeg/.png file name in
// imageDir. A missing or empty folder yields the default cover. On a read error
// the default cover is returned together with the error.
func (l *Library) ResolveCover(imageDir string) (string, error) {
	fallback := l.DefaultCover
	if fallback == "" {
		fallback = DefaultCover
	}

	entries, err := os.ReadDir(imageDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || isNotDir(imageDir) {
			return fallback, nil
		}
		return fallback, err
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if coverExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			images = append(images, entry.Name())
		}
	}
	if len(images) == 0 {
		return fallback, nil
	}
	sort.Strings(images)
	return images[0], nil
}

func isNotDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
