package client

import "testing"

func TestRevisionTrackerDefault(t *testing.T) {
	tracker := NewRevisionTracker(nil)
	if got := tracker.Get(5); got != 1 {
		t.Fatalf("expected baseline revision 1 for unknown map, got %d", got)
	}
	if tracker.Known(5) {
		t.Fatalf("reading a default must not create an entry")
	}
}

func TestRevisionTrackerMonotonic(t *testing.T) {
	tracker := NewRevisionTracker(nil)
	if !tracker.Set(5, 3) {
		t.Fatalf("expected first observation to advance")
	}
	if tracker.Set(5, 2) {
		t.Fatalf("stale revision must be a no-op")
	}
	if got := tracker.Get(5); got != 3 {
		t.Fatalf("expected revision 3 after stale set, got %d", got)
	}
}

func TestRevisionTrackerEqualSetIsSilent(t *testing.T) {
	fired := 0
	tracker := NewRevisionTracker(func(MapID, int64) { fired++ })
	tracker.Set(5, 4)
	tracker.Set(5, 4)
	if fired != 1 {
		t.Fatalf("equal revision must not re-fire invalidation, fired %d times", fired)
	}
}

func TestRevisionTrackerMaxWins(t *testing.T) {
	tracker := NewRevisionTracker(nil)
	for _, rev := range []int64{2, 7, 3, 7, 5} {
		tracker.Set(5, rev)
	}
	if got := tracker.Get(5); got != 7 {
		t.Fatalf("expected max revision 7, got %d", got)
	}
}

func TestRevisionTrackerInvalidationSignal(t *testing.T) {
	var gotMap MapID
	var gotRev int64
	tracker := NewRevisionTracker(func(m MapID, r int64) {
		gotMap = m
		gotRev = r
	})
	tracker.Set(9, 12)
	if gotMap != 9 || gotRev != 12 {
		t.Fatalf("expected signal (9,12), got (%d,%d)", gotMap, gotRev)
	}
}
