package catalog

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manga-progress/internal/library"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func volume(series, name, cover string) library.Volume {
	return library.Volume{
		Series: series,
		Name:   name,
		Path:   library.VolumePath(series, name+".html"),
		Cover:  cover,
	}
}

type fakeScanner struct {
	scan  *library.Scan
	err   error
	calls int
}

func (f *fakeScanner) Scan() (*library.Scan, error) {
	f.calls++
	return f.scan, f.err
}

func TestReconcilePreservesProgress(t *testing.T) {
	existing := []Entry{
		{Series: "A", Volume: "v1", Path: "./manga/A/old.html", PageIdx: 12, LastPageIdx: 11, CoverPage: "old.jpg"},
	}

	result := Reconcile(existing, []library.Volume{volume("A", "v1", "new.jpg")})

	require.Len(t, result.Entries, 1)
	assert.Equal(t, Entry{
		Series:      "A",
		Volume:      "v1",
		Path:        "./manga/A/v1.html",
		PageIdx:     12,
		LastPageIdx: 11,
		CoverPage:   "new.jpg",
	}, result.Entries[0])
	assert.Equal(t, 1, result.Kept)
	assert.Equal(t, 0, result.Added)
}

func TestReconcileAddsAndPrunes(t *testing.T) {
	existing := []Entry{
		{Series: "A", Volume: "v1", PageIdx: 3},
		{Series: "A", Volume: "gone", PageIdx: 7},
	}

	result := Reconcile(existing, []library.Volume{
		volume("A", "v1", "0.jpg"),
		volume("B", "v1", "a.jpg"),
	})

	require.Len(t, result.Entries, 2)
	assert.Equal(t, 3, result.Entries[0].PageIdx)
	assert.Equal(t, Entry{Series: "B", Volume: "v1", Path: "./manga/B/v1.html", CoverPage: "a.jpg"}, result.Entries[1])
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Kept)
	assert.Equal(t, 1, result.Pruned)
	for _, e := range result.Entries {
		assert.NotEqual(t, "gone", e.Volume)
	}
}

func TestReconcileSameVolumeNameInDifferentSeries(t *testing.T) {
	existing := []Entry{{Series: "A", Volume: "01", PageIdx: 5}}

	result := Reconcile(existing, []library.Volume{volume("A", "01", ""), volume("B", "01", "")})

	require.Len(t, result.Entries, 2)
	assert.Equal(t, 5, result.Entries[0].PageIdx)
	assert.Equal(t, 0, result.Entries[1].PageIdx)
}

func TestReconcileKeepsUnreadableSeries(t *testing.T) {
	existing := []Entry{
		{Series: "A", Volume: "v1", Path: "./manga/A/v1.html", PageIdx: 12, LastPageIdx: 40, CoverPage: "a.jpg"},
		{Series: "A", Volume: "v2", Path: "./manga/A/v2.html", PageIdx: 3},
		{Series: "B", Volume: "v1", PageIdx: 9},
	}

	result := Reconcile(existing, []library.Volume{volume("C", "v1", "")}, "A")

	require.Len(t, result.Entries, 3)
	assert.Equal(t, "C", result.Entries[0].Series)
	assert.Equal(t, existing[0], result.Entries[1])
	assert.Equal(t, existing[1], result.Entries[2])
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 2, result.Kept)
	assert.Equal(t, 1, result.Pruned)
}

func TestReconcileIsIdempotent(t *testing.T) {
	volumes := []library.Volume{volume("A", "v1", "a.jpg"), volume("A", "v2", "0.jpg")}

	first := Reconcile(nil, volumes)
	second := Reconcile(first.Entries, volumes)
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 0, second.Pruned)
}

func TestReconcileSeriesOrder(t *testing.T) {
	tests := []struct {
		name     string
		previous []string
		current  []string
		want     []string
	}{
		{"appends new series", []string{"B", "A"}, []string{"A", "B", "C"}, []string{"B", "A", "C"}},
		{"drops removed series", []string{"B", "X", "A"}, []string{"A", "B"}, []string{"B", "A"}},
		{"empty previous", nil, []string{"A", "B"}, []string{"A", "B"}},
		{"collapses duplicates", []string{"A", "B", "A"}, []string{"A", "B"}, []string{"A", "B"}},
		{"nothing on disk", []string{"A"}, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconcileSeriesOrder(tt.previous, tt.current)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ReconcileSeriesOrder(got, tt.current))
		})
	}
}

func TestProgressStoreInitializesFromScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	scanner := &fakeScanner{scan: &library.Scan{Volumes: []library.Volume{volume("A", "v1", "a.jpg")}}}
	store := NewProgressStore(path, scanner, quietLogger())

	entries, err := store.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "./manga/A/v1.html", entries[0].Path)
	assert.FileExists(t, path)

	_, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, scanner.calls)
}

func TestProgressStoreInitFailureIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	store := NewProgressStore(path, &fakeScanner{err: errors.New("no root")}, quietLogger())

	entries, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoFileExists(t, path)
}

func TestProgressStoreMalformedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	scanner := &fakeScanner{scan: &library.Scan{}}
	store := NewProgressStore(path, scanner, quietLogger())

	entries, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.Equal(t, 0, scanner.calls)
}

func TestProgressStoreUpdateMatchesNormalizedPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	store := NewProgressStore(path, &fakeScanner{scan: &library.Scan{}}, quietLogger())
	_, err := store.Reconcile([]library.Volume{volume("A", "v1", "a.jpg"), volume("A", "v2", "b.jpg")})
	require.NoError(t, err)

	updated, err := store.Update(`.\Manga\A\v1.html`, 30, 29)
	require.NoError(t, err)
	assert.Equal(t, "./manga/A/v1.html", updated.Path)

	entries, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 30, entries[0].PageIdx)
	assert.Equal(t, 29, entries[0].LastPageIdx)
	assert.Equal(t, 0, entries[1].PageIdx)
}

func TestProgressStoreUpdateUnknownPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	store := NewProgressStore(path, &fakeScanner{scan: &library.Scan{}}, quietLogger())
	_, err := store.Reconcile([]library.Volume{volume("A", "v1", "a.jpg")})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = store.Update("./manga/A/v9.html", 1, 0)
	assert.True(t, errors.Is(err, ErrNotFound))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProgressStoreUpdateRejectsNegativePages(t *testing.T) {
	store := NewProgressStore(filepath.Join(t.TempDir(), "progress.json"), nil, quietLogger())

	_, err := store.Update("./manga/A/v1.html", -1, 0)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestProgressStoreReconcileIsByteIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	store := NewProgressStore(path, nil, quietLogger())
	volumes := []library.Volume{volume("A", "v1", "a.jpg"), volume("B", "v1", "0.jpg")}

	_, err := store.Reconcile(volumes)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = store.Reconcile(volumes)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestSeriesOrderStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series_order.json")
	store := NewSeriesOrderStore(path, quietLogger())

	order, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{}, order)

	assert.ErrorIs(t, store.Save(nil), ErrEmptyOrder)
	require.NoError(t, store.Save([]string{"B", "A"}))

	order, err = store.Reconcile([]string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, order)

	order, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, order)
}

func TestSeriesOrderStoreMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series_order.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"x": 1}`), 0644))

	order, err := NewSeriesOrderStore(path, quietLogger()).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{}, order)
}
