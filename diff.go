package client

// DeltaBatch is one incremental update for a single entity kind: upserts in
// arrival order plus a set of deleted identities.
type DeltaBatch[K comparable, T Entry[K]] struct {
	Updates   []T
	Deletions []K
}

// Diff describes what a reconciliation pass actually changed.
type Diff[K comparable, T Entry[K]] struct {
	Added      []T
	Updated    []T
	RemovedIDs []K
}

// Empty reports whether the pass changed nothing.
func (d Diff[K, T]) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.RemovedIDs) == 0
}

// ApplyDelta merges a batch into the store and returns the resulting diff.
//
// Updates apply in arrival order; an update whose identity also appears in
// the batch's deletions is skipped outright, so deletion wins regardless of
// ordering within the batch. Deletions of absent identities are no-ops.
// Re-applying the same batch against the resulting state yields an empty
// diff: unchanged upserts are not classified and the deletions find nothing.
func ApplyDelta[K comparable, T Entry[K]](store *Store[K, T], batch DeltaBatch[K, T]) Diff[K, T] {
	var diff Diff[K, T]

	doomed := make(map[K]bool, len(batch.Deletions))
	for _, key := range batch.Deletions {
		doomed[key] = true
	}

	for _, item := range batch.Updates {
		if doomed[item.Key()] {
			continue
		}
		added, changed := store.Upsert(item)
		switch {
		case added:
			diff.Added = append(diff.Added, item)
		case changed:
			diff.Updated = append(diff.Updated, item)
		}
	}

	for _, key := range batch.Deletions {
		if store.Remove(key) {
			diff.RemovedIDs = append(diff.RemovedIDs, key)
		}
	}

	return diff
}

// ApplySnapshot replaces the store contents wholesale and reports the diff
// relative to the previous contents.
func ApplySnapshot[K comparable, T Entry[K]](store *Store[K, T], items []T) Diff[K, T] {
	return diffAgainst(store, func() { store.ReplaceAll(items) })
}

// ApplyScopedSnapshot replaces one map's slice of the store, leaving entries
// on other maps untouched, and reports the diff.
func ApplyScopedSnapshot[K comparable, T Entry[K]](store *Store[K, T], mapID MapID, items []T) Diff[K, T] {
	return diffAgainst(store, func() { store.ReplaceScoped(mapID, items) })
}

// diffAgainst snapshots the prior contents, runs the replacement, and
// classifies every identity that ended up added, changed, or gone.
func diffAgainst[K comparable, T Entry[K]](store *Store[K, T], replace func()) Diff[K, T] {
	before := make(map[K]T, store.Len())
	beforeOrder := make([]K, 0, store.Len())
	for item := range store.All() {
		before[item.Key()] = item
		beforeOrder = append(beforeOrder, item.Key())
	}

	replace()

	var diff Diff[K, T]
	for item := range store.All() {
		prev, existed := before[item.Key()]
		switch {
		case !existed:
			diff.Added = append(diff.Added, item)
		case prev != item:
			diff.Updated = append(diff.Updated, item)
		}
	}
	for _, key := range beforeOrder {
		if !store.Has(key) {
			diff.RemovedIDs = append(diff.RemovedIDs, key)
		}
	}
	return diff
}
