package bookmarks

import (
	"errors"
	"fmt"
	"log/slog"

	"manga-progress/internal/jsonfile"
	"manga-progress/internal/library"
)

// ErrInvalidPath is returned when a bookmark request carries no volume path.
var ErrInvalidPath = errors.New("bookmark path is empty")

// Bookmark is a named page inside a volume.
type Bookmark struct {
	Title   string `json:"title"`
	PageIdx int    `json:"page_idx"`
}

// Entry holds the bookmarks of one volume, in insertion order.
type Entry struct {
	Path      string     `json:"path"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// Store persists bookmarks in bookmarks.json, one entry per normalized volume path.
type Store struct {
	file   *jsonfile.File
	logger *slog.Logger
}

// NewStore creates a bookmark store backed by the file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{file: jsonfile.New(path), logger: logger}
}

// List returns the bookmarks for a volume. A volume without bookmarks yields an
// entry with the normalized path and an empty list.
func (s *Store) List(volumePath string) (Entry, error) {
	key := library.NormalizePath(volumePath)
	entry := Entry{Path: key, Bookmarks: []Bookmark{}}
	err := s.file.WithLock(func() error {
		all := s.load()
		if i := find(all, key); i >= 0 {
			entry = all[i]
		}
		return nil
	})
	return entry, err
}

// Upsert saves a bookmark for a volume. A bookmark with the same title is moved to
// the new page; otherwise the bookmark is appended. The volume's updated entry is
// returned.
func (s *Store) Upsert(volumePath, title string, pageIdx int) (Entry, error) {
	key := library.NormalizePath(volumePath)
	if key == "" {
		return Entry{}, ErrInvalidPath
	}

	var entry Entry
	err := s.file.WithLock(func() error {
		all := s.load()
		i := find(all, key)
		if i < 0 {
			all = append(all, Entry{Path: key, Bookmarks: []Bookmark{}})
			i = len(all) - 1
		}

		entry = all[i]
		updated := false
		for j := range entry.Bookmarks {
			if entry.Bookmarks[j].Title == title {
				entry.Bookmarks[j].PageIdx = pageIdx
				updated = true
				break
			}
		}
		if !updated {
			entry.Bookmarks = append(entry.Bookmarks, Bookmark{Title: title, PageIdx: pageIdx})
		}
		all[i] = entry

		return s.file.Write(all)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("save bookmarks: %w", err)
	}

	s.logger.Info("bookmark saved", "path", entry.Path, "title", title, "page_idx", pageIdx)
	return entry, nil
}

// Delete removes every bookmark with title from a volume. Deleting from a volume
// that has no bookmarks is not an error.
func (s *Store) Delete(volumePath, title string) error {
	key := library.NormalizePath(volumePath)
	if key == "" {
		return ErrInvalidPath
	}

	removed := 0
	err := s.file.WithLock(func() error {
		all := s.load()
		if i := find(all, key); i >= 0 {
			kept := make([]Bookmark, 0, len(all[i].Bookmarks))
			for _, b := range all[i].Bookmarks {
				if b.Title == title {
					removed++
					continue
				}
				kept = append(kept, b)
			}
			all[i].Bookmarks = kept
		}
		return s.file.Write(all)
	})
	if err != nil {
		return fmt.Errorf("save bookmarks: %w", err)
	}

	s.logger.Info("bookmark deleted", "path", key, "title", title, "removed", removed)
	return nil
}

// load reads all entries, creating an empty document when the file is missing.
// Read and decode failures yield an empty list. Callers hold the file's scope.
func (s *Store) load() []Entry {
	var all []Entry
	exists, err := s.file.Read(&all)
	if err != nil {
		s.logger.Error("cannot read bookmarks, treating as empty", "file", s.file.Path(), "error", err)
		return []Entry{}
	}
	if !exists {
		if err := s.file.Write([]Entry{}); err != nil {
			s.logger.Error("cannot create bookmarks file", "file", s.file.Path(), "error", err)
		}
		return []Entry{}
	}

	for i := range all {
		if all[i].Bookmarks == nil {
			all[i].Bookmarks = []Bookmark{}
		}
	}
	if all == nil {
		all = []Entry{}
	}
	return all
}

func find(all []Entry, key string) int {
	for i, e := range all {
		if library.NormalizePath(e.Path) == key {
			return i
		}
	}
	return -1
}
