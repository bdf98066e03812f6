package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"manga-progress/internal/jsonfile"
	"manga-progress/internal/library"
)

// Scanner lists the volumes on disk. *library.Library implements it.
type Scanner interface {
	Scan() (*library.Scan, error)
}

// ProgressStore persists the catalog in progress.json. Every mutation rewrites the
// whole document inside the file's exclusive scope.
type ProgressStore struct {
	file    *jsonfile.File
	scanner Scanner
	logger  *slog.Logger
}

// NewProgressStore creates a store for the catalog at path. scanner is used once to
// build the catalog when the file does not exist yet.
func NewProgressStore(path string, scanner Scanner, logger *slog.Logger) *ProgressStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{
		file:    jsonfile.New(path),
		scanner: scanner,
		logger:  logger,
	}
}

// Path returns the location of progress.json.
func (s *ProgressStore) Path() string {
	return s.file.Path()
}

// Load returns the current catalog. A missing file is initialized from a library
// scan and persisted; an unreadable or malformed file yields an empty catalog.
func (s *ProgressStore) Load() ([]Entry, error) {
	var entries []Entry
	err := s.file.WithLock(func() error {
		var exists bool
		entries, exists = s.read()
		if !exists {
			entries = s.initialize()
		}
		return nil
	})
	if err != nil {
		return []Entry{}, err
	}
	return entries, nil
}

// Update sets the page indexes of the entry whose path matches volumePath after
// normalization. ErrNotFound is returned, and nothing is written, when no entry
// matches.
func (s *ProgressStore) Update(volumePath string, pageIdx, lastPageIdx int) (Entry, error) {
	if pageIdx < 0 || lastPageIdx < 0 {
		return Entry{}, ErrInvalidPage
	}

	var updated Entry
	err := s.file.WithLock(func() error {
		entries, exists := s.read()
		if !exists {
			entries = s.initialize()
		}

		idx := find(entries, volumePath)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, volumePath)
		}

		entries[idx].PageIdx = pageIdx
		entries[idx].LastPageIdx = lastPageIdx
		updated = entries[idx]

		if err := s.file.Write(entries); err != nil {
			s.logger.Error("failed to save progress", "file", s.file.Path(), "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	s.logger.Info("progress updated", "path", updated.Path, "page_idx", pageIdx, "last_page_idx", lastPageIdx)
	return updated, nil
}

// Reconcile merges the given scan into the persisted catalog and saves the result.
// Entries of the unreadable series are kept as they are.
func (s *ProgressStore) Reconcile(volumes []library.Volume, unreadable ...string) (Reconciliation, error) {
	var result Reconciliation
	err := s.file.WithLock(func() error {
		existing, _ := s.read()
		result = Reconcile(existing, volumes, unreadable...)
		return s.file.Write(result.Entries)
	})
	if err != nil {
		return result, fmt.Errorf("save catalog: %w", err)
	}
	return result, nil
}

// read loads the document, treating any read or decode failure as an empty
// catalog. It must be called inside the file's exclusive scope.
func (s *ProgressStore) read() ([]Entry, bool) {
	var entries []Entry
	exists, err := s.file.Read(&entries)
	if err != nil {
		if errors.Is(err, jsonfile.ErrMalformed) {
			s.logger.Error("progress file is malformed, treating as empty", "file", s.file.Path(), "error", err)
		} else {
			s.logger.Error("cannot read progress file, treating as empty", "file", s.file.Path(), "error", err)
		}
		return []Entry{}, true
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, exists
}

// initialize builds the catalog from a fresh scan and persists it. Failures are
// logged and leave the file absent so the next call tries again.
func (s *ProgressStore) initialize() []Entry {
	if s.scanner == nil {
		return []Entry{}
	}

	scan, err := s.scanner.Scan()
	if err != nil {
		s.logger.Error("cannot initialize progress from library", "error", err)
		return []Entry{}
	}

	entries := Reconcile(nil, scan.Volumes).Entries
	if err := s.file.Write(entries); err != nil {
		s.logger.Error("failed to save initialized progress", "file", s.file.Path(), "error", err)
		return entries
	}
	s.logger.Info("progress initialized", "file", s.file.Path(), "volumes", len(entries))
	return entries
}

func find(entries []Entry, volumePath string) int {
	key := library.NormalizePath(volumePath)
	for i, e := range entries {
		if library.NormalizePath(e.Path) == key {
			return i
		}
	}
	return -1
}
