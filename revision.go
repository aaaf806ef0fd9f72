package client

// defaultRevision is reported for maps that have never been observed.
const defaultRevision int64 = 1

// MapRevision pairs a map with a revision counter as delivered on the wire.
type MapRevision struct {
	Map      MapID `json:"map"`
	Revision int64 `json:"revision"`
}

// InvalidateFunc receives the map and new revision whenever a stored revision
// actually advances. Downstream tile caches key their entries by revision, so
// this is the cache-bust signal.
type InvalidateFunc func(mapID MapID, revision int64)

// RevisionTracker keeps one strictly non-decreasing revision counter per map.
// Entries are created lazily on first observation and live for the session.
type RevisionTracker struct {
	revisions  map[MapID]int64
	invalidate InvalidateFunc
}

// NewRevisionTracker returns an empty tracker. invalidate may be nil.
func NewRevisionTracker(invalidate InvalidateFunc) *RevisionTracker {
	return &RevisionTracker{
		revisions:  make(map[MapID]int64),
		invalidate: invalidate,
	}
}

// Get returns the tracked revision for a map, or the default baseline if the
// map has never been observed.
func (t *RevisionTracker) Get(mapID MapID) int64 {
	if rev, ok := t.revisions[mapID]; ok {
		return rev
	}
	return defaultRevision
}

// Set records a newly observed revision. Stale and equal revisions are
// no-ops; the push and poll channels are unordered relative to each other,
// so regressions here are expected, not errors. Only a strictly greater
// value stores and fires the invalidation signal. Reports whether the
// stored value advanced.
func (t *RevisionTracker) Set(mapID MapID, revision int64) bool {
	if revision <= t.Get(mapID) {
		return false
	}
	t.revisions[mapID] = revision
	if t.invalidate != nil {
		t.invalidate(mapID, revision)
	}
	return true
}

// Known reports whether a map has ever been observed.
func (t *RevisionTracker) Known(mapID MapID) bool {
	_, ok := t.revisions[mapID]
	return ok
}
