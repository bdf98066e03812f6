package indexer

import (
	"errors"
	"fmt"
	"log/slog"

	"manga-progress/internal/catalog"
	"manga-progress/internal/htmlpatch"
	"manga-progress/internal/library"
)

// Indexer rescans the library, patches reader pages and reconciles the persisted
// catalog and series order with what is on disk.
type Indexer struct {
	Library     *library.Library
	Progress    *catalog.ProgressStore
	SeriesOrder *catalog.SeriesOrderStore
	// ScriptTag is injected before </body> of every reader page. Empty disables patching.
	ScriptTag string
	Logger    *slog.Logger
}

// Report summarizes one run.
type Report struct {
	Series         int
	Volumes        int
	Added          int
	Kept           int
	Pruned         int
	Patched        int
	AlreadyPresent int
	NoBody         int
	// Failures are per-file problems that did not stop the run.
	Failures []error
	Order    []string
}

// Run performs a full scan. Per-file failures are collected in the report; the
// returned error is set only when the library root is unreadable or a data file
// could not be saved.
func (ix *Indexer) Run() (*Report, error) {
	logger := ix.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scan, err := ix.Library.Scan()
	if err != nil {
		return nil, fmt.Errorf("scan library: %w", err)
	}

	report := &Report{
		Series:   len(scan.Series),
		Volumes:  len(scan.Volumes),
		Failures: append([]error(nil), scan.Errors...),
	}

	if ix.ScriptTag != "" {
		for _, v := range scan.Volumes {
			ix.patch(logger, report, v)
		}
	}

	var saveErrs []error
	rec, err := ix.Progress.Reconcile(scan.Volumes, scan.Unreadable...)
	if err != nil {
		logger.Error("failed to save progress", "file", ix.Progress.Path(), "error", err)
		saveErrs = append(saveErrs, err)
	} else {
		report.Added, report.Kept, report.Pruned = rec.Added, rec.Kept, rec.Pruned
		logger.Info("progress updated", "file", ix.Progress.Path(), "volumes", len(rec.Entries), "added", rec.Added, "pruned", rec.Pruned)
	}

	order, err := ix.SeriesOrder.Reconcile(scan.Series)
	if err != nil {
		logger.Error("failed to save series order", "error", err)
		saveErrs = append(saveErrs, err)
	} else {
		report.Order = order
		logger.Info("series order updated", "series", len(order))
	}

	return report, errors.Join(saveErrs...)
}

func (ix *Indexer) patch(logger *slog.Logger, report *Report, v library.Volume) {
	result, err := htmlpatch.PatchFile(v.File, ix.ScriptTag)
	if err != nil {
		logger.Error("failed to patch reader page", "file", v.File, "error", err)
		report.Failures = append(report.Failures, err)
		return
	}

	switch result {
	case htmlpatch.Inserted:
		report.Patched++
		logger.Info("script tag inserted", "series", v.Series, "volume", v.Name)
	case htmlpatch.AlreadyPresent:
		report.AlreadyPresent++
		logger.Debug("script tag already present", "series", v.Series, "volume", v.Name)
	case htmlpatch.NoBody:
		report.NoBody++
		logger.Warn("no </body> found, page left unchanged", "series", v.Series, "volume", v.Name)
	}
}
