package indexer

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manga-progress/internal/catalog"
	"manga-progress/internal/htmlpatch"
	"manga-progress/internal/library"
)

const page = "<html><body><div id=\"pages\"></div></body></html>"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newIndexer(t *testing.T) (*Indexer, string, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "manga")
	data := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	lib := library.New(root, logger)
	return &Indexer{
		Library:     lib,
		Progress:    catalog.NewProgressStore(filepath.Join(data, "progress.json"), lib, logger),
		SeriesOrder: catalog.NewSeriesOrderStore(filepath.Join(data, "series_order.json"), logger),
		ScriptTag:   htmlpatch.ScriptTag("/static/mokuro_progress.js"),
		Logger:      logger,
	}, root, data
}

func readEntries(t *testing.T, path string) []catalog.Entry {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []catalog.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	return entries
}

func TestRunIsIdempotent(t *testing.T) {
	ix, root, data := newIndexer(t)
	writeFile(t, filepath.Join(root, "A", "v1.html"), page)
	writeFile(t, filepath.Join(root, "A", "v1", "b.png"), "")
	writeFile(t, filepath.Join(root, "A", "v1", "a.jpg"), "")
	writeFile(t, filepath.Join(root, "B", "v1.html"), "<html>no body</html>")

	report, err := ix.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Series)
	assert.Equal(t, 2, report.Volumes)
	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 1, report.Patched)
	assert.Equal(t, 1, report.NoBody)
	assert.Empty(t, report.Failures)

	firstProgress, err := os.ReadFile(filepath.Join(data, "progress.json"))
	require.NoError(t, err)
	firstPage, err := os.ReadFile(filepath.Join(root, "A", "v1.html"))
	require.NoError(t, err)

	report, err = ix.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Patched)
	assert.Equal(t, 1, report.AlreadyPresent)
	assert.Equal(t, 0, report.Added)

	secondProgress, err := os.ReadFile(filepath.Join(data, "progress.json"))
	require.NoError(t, err)
	secondPage, err := os.ReadFile(filepath.Join(root, "A", "v1.html"))
	require.NoError(t, err)

	assert.Equal(t, string(firstProgress), string(secondProgress))
	assert.Equal(t, string(firstPage), string(secondPage))
	assert.Equal(t, 1, strings.Count(string(secondPage), ix.ScriptTag))

	entries := readEntries(t, filepath.Join(data, "progress.json"))
	require.Len(t, entries, 2)
	assert.Equal(t, "a.jpg", entries[0].CoverPage)
	assert.Equal(t, library.DefaultCover, entries[1].CoverPage)
}

func TestRunPreservesProgressAndPrunes(t *testing.T) {
	ix, root, data := newIndexer(t)
	writeFile(t, filepath.Join(root, "A", "v1.html"), page)
	writeFile(t, filepath.Join(root, "A", "v2.html"), page)
	_, err := ix.Run()
	require.NoError(t, err)

	_, err = ix.Progress.Update("./manga/A/v1.html", 12, 11)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "A", "v2.html")))
	writeFile(t, filepath.Join(root, "A", "v1", "new.png"), "")

	report, err := ix.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pruned)

	entries := readEntries(t, filepath.Join(data, "progress.json"))
	require.Len(t, entries, 1)
	assert.Equal(t, "v1", entries[0].Volume)
	assert.Equal(t, 12, entries[0].PageIdx)
	assert.Equal(t, 11, entries[0].LastPageIdx)
	assert.Equal(t, "new.png", entries[0].CoverPage)
}

func TestRunReconcilesSeriesOrder(t *testing.T) {
	ix, root, _ := newIndexer(t)
	for _, s := range []string{"A", "B", "C"} {
		writeFile(t, filepath.Join(root, s, "v1.html"), page)
	}
	require.NoError(t, ix.SeriesOrder.Save([]string{"B", "Gone", "A"}))

	report, err := ix.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, report.Order)
}

func TestRunContinuesPastUnreadablePage(t *testing.T) {
	ix, root, data := newIndexer(t)
	writeFile(t, filepath.Join(root, "A", "v2.html"), page)
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.html"), filepath.Join(root, "A", "v1.html")))

	report, err := ix.Run()
	require.NoError(t, err)
	assert.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Patched)
	assert.Len(t, readEntries(t, filepath.Join(data, "progress.json")), 2)
}

func TestRunKeepsProgressOfUnreadableSeries(t *testing.T) {
	ix, root, data := newIndexer(t)
	writeFile(t, filepath.Join(root, "A", "v1.html"), page)
	writeFile(t, filepath.Join(root, "B", "v1.html"), page)
	_, err := ix.Run()
	require.NoError(t, err)
	_, err = ix.Progress.Update("./manga/A/v1.html", 12, 40)
	require.NoError(t, err)

	// A's folder moves to a disk that is not mounted, leaving a dangling link.
	moved := filepath.Join(t.TempDir(), "A")
	require.NoError(t, os.Rename(filepath.Join(root, "A"), moved))
	require.NoError(t, os.Symlink(filepath.Join(t.TempDir(), "unmounted"), filepath.Join(root, "A")))

	report, err := ix.Run()
	require.NoError(t, err)
	assert.Len(t, report.Failures, 1)
	assert.Equal(t, 0, report.Pruned)
	assert.Equal(t, []string{"A", "B"}, report.Order)

	entries := readEntries(t, filepath.Join(data, "progress.json"))
	require.Len(t, entries, 2)
	assert.Equal(t, "B", entries[0].Series)
	assert.Equal(t, "A", entries[1].Series)
	assert.Equal(t, 12, entries[1].PageIdx)

	require.NoError(t, os.Remove(filepath.Join(root, "A")))
	require.NoError(t, os.Symlink(moved, filepath.Join(root, "A")))

	report, err = ix.Run()
	require.NoError(t, err)
	assert.Empty(t, report.Failures)

	entries = readEntries(t, filepath.Join(data, "progress.json"))
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Series)
	assert.Equal(t, 12, entries[0].PageIdx)
	assert.Equal(t, 40, entries[0].LastPageIdx)
}

func TestRunIndexesSymlinkedSeries(t *testing.T) {
	ix, root, data := newIndexer(t)
	other := t.TempDir()
	writeFile(t, filepath.Join(other, "v1.html"), page)
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.Symlink(other, filepath.Join(root, "A")))

	report, err := ix.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Series)
	assert.Equal(t, 1, report.Patched)
	assert.Equal(t, []string{"A"}, report.Order)

	entries := readEntries(t, filepath.Join(data, "progress.json"))
	require.Len(t, entries, 1)
	assert.Equal(t, "./manga/A/v1.html", entries[0].Path)
}

func TestRunMissingRoot(t *testing.T) {
	ix, _, _ := newIndexer(t)

	_, err := ix.Run()
	assert.Error(t, err)
}
