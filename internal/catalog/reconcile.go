package catalog

import "manga-progress/internal/library"

// Reconciliation is the outcome of merging a scan with a persisted catalog.
type Reconciliation struct {
	Entries []Entry
	Added   int
	Kept    int
	Pruned  int
}

// Reconcile builds the catalog for the volumes currently on disk. Volumes whose
// (series, volume) key already exists keep their page indexes and only get path
// and cover refreshed; new volumes start at page 0. Entries for volumes that are
// gone are dropped, except those of an unreadable series, which are carried over
// unchanged. When existing holds the same key twice, the later one wins.
func Reconcile(existing []Entry, volumes []library.Volume, unreadable ...string) Reconciliation {
	known := make(map[Key]Entry, len(existing))
	for _, e := range existing {
		known[e.Key()] = e
	}
	skipped := make(map[string]bool, len(unreadable))
	for _, s := range unreadable {
		skipped[s] = true
	}

	result := Reconciliation{Entries: make([]Entry, 0, len(volumes))}
	seen := make(map[Key]bool, len(volumes))
	for _, v := range volumes {
		key := Key{Series: v.Series, Volume: v.Name}
		if seen[key] {
			continue
		}
		seen[key] = true

		entry, ok := known[key]
		if ok {
			entry.Path = v.Path
			entry.CoverPage = v.Cover
			result.Kept++
		} else {
			entry = NewEntry(v)
			result.Added++
		}
		result.Entries = append(result.Entries, entry)
	}

	for _, e := range existing {
		key := e.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		if skipped[key.Series] {
			result.Entries = append(result.Entries, known[key])
			result.Kept++
			continue
		}
		result.Pruned++
	}
	return result
}

// ReconcileSeriesOrder keeps the previous order for series that still exist and
// appends newly discovered series in discovery order. Series no longer on disk
// are dropped, and duplicates in previous collapse to their first position.
func ReconcileSeriesOrder(previous, current []string) []string {
	present := make(map[string]bool, len(current))
	for _, s := range current {
		present[s] = true
	}

	order := make([]string, 0, len(current))
	placed := make(map[string]bool, len(current))
	for _, s := range previous {
		if present[s] && !placed[s] {
			order = append(order, s)
			placed[s] = true
		}
	}
	for _, s := range current {
		if !placed[s] {
			order = append(order, s)
			placed[s] = true
		}
	}
	return order
}
