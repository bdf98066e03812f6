package catalog

import (
	"errors"

	"manga-progress/internal/library"
)

var (
	// ErrNotFound is returned when no catalog entry matches a volume path.
	ErrNotFound = errors.New("volume not found in catalog")
	// ErrInvalidPage is returned for negative page indexes.
	ErrInvalidPage = errors.New("page index must not be negative")
	// ErrEmptyOrder is returned when a series order update carries no series.
	ErrEmptyOrder = errors.New("series order is empty")
)

// Entry is the reading progress of one volume.
type Entry struct {
	Series      string `json:"series"`
	Volume      string `json:"volume"`
	Path        string `json:"path"`
	PageIdx     int    `json:"page_idx"`
	LastPageIdx int    `json:"last_page_idx"`
	CoverPage   string `json:"cover_page"`
}

// Key identifies an entry within one catalog snapshot.
type Key struct {
	Series string
	Volume string
}

// Key returns the (series, volume) pair of the entry.
func (e Entry) Key() Key {
	return Key{Series: e.Series, Volume: e.Volume}
}

// NewEntry creates an unread entry for a volume found on disk.
func NewEntry(v library.Volume) Entry {
	return Entry{
		Series:    v.Series,
		Volume:    v.Name,
		Path:      v.Path,
		CoverPage: v.Cover,
	}
}
