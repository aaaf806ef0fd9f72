package client

import (
	"testing"
	"time"
)

func collectChars(s *Store[EntityID, Character]) []Character {
	var out []Character
	for c := range s.All() {
		out = append(out, c)
	}
	return out
}

func TestStoreKeepsInsertionOrder(t *testing.T) {
	store := newCharacterStore()
	store.Upsert(Character{ID: 3, Map: 5, Name: "c"})
	store.Upsert(Character{ID: 1, Map: 5, Name: "a"})
	store.Upsert(Character{ID: 2, Map: 5, Name: "b"})

	got := collectChars(store)
	if len(got) != 3 {
		t.Fatalf("expected 3 characters, got %d", len(got))
	}
	if got[0].ID != 3 || got[1].ID != 1 || got[2].ID != 2 {
		t.Fatalf("expected insertion order 3,1,2, got %d,%d,%d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestStoreUpsertOverwriteKeepsPosition(t *testing.T) {
	store := newCharacterStore()
	store.Upsert(Character{ID: 1, Map: 5, Name: "a"})
	store.Upsert(Character{ID: 2, Map: 5, Name: "b"})

	added, changed := store.Upsert(Character{ID: 1, Map: 5, Name: "renamed"})
	if added {
		t.Fatalf("overwrite reported as add")
	}
	if !changed {
		t.Fatalf("expected overwrite to report a change")
	}

	got := collectChars(store)
	if got[0].ID != 1 || got[0].Name != "renamed" {
		t.Fatalf("expected id 1 first with new name, got %+v", got[0])
	}
}

func TestStoreUpsertIdenticalReportsNoChange(t *testing.T) {
	store := newCharacterStore()
	store.Upsert(Character{ID: 1, Map: 5, Name: "a"})
	added, changed := store.Upsert(Character{ID: 1, Map: 5, Name: "a"})
	if added || changed {
		t.Fatalf("identical upsert should be a no-op, got added=%v changed=%v", added, changed)
	}
}

func TestStoreRemove(t *testing.T) {
	store := newCharacterStore()
	store.Upsert(Character{ID: 1, Map: 5})
	if !store.Remove(1) {
		t.Fatalf("expected removal of existing entry")
	}
	if store.Remove(1) {
		t.Fatalf("second removal should report absence")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, len=%d", store.Len())
	}
}

func TestStoreReplaceScopedLeavesOtherMapsAlone(t *testing.T) {
	store := newCharacterStore()
	store.Upsert(Character{ID: 1, Map: 5, Name: "a"})
	store.Upsert(Character{ID: 2, Map: 5, Name: "b"})
	store.Upsert(Character{ID: 3, Map: 7, Name: "elsewhere"})

	removed := store.ReplaceScoped(5, []Character{
		{ID: 2, Map: 5, Name: "b2"},
		{ID: 4, Map: 5, Name: "new"},
	})

	if len(removed) != 1 || removed[0] != 1 {
		t.Fatalf("expected only id 1 removed, got %v", removed)
	}
	if !store.Has(3) {
		t.Fatalf("entry on map 7 must survive a scoped replace of map 5")
	}
	if got, _ := store.Get(2); got.Name != "b2" {
		t.Fatalf("expected id 2 upserted, got %+v", got)
	}
	if !store.Has(4) {
		t.Fatalf("expected id 4 inserted")
	}
}

func TestStoreFilterIsRestartable(t *testing.T) {
	store := newCharacterStore()
	store.Upsert(Character{ID: 1, Map: 5})
	store.Upsert(Character{ID: 2, Map: 6})

	seq := store.ByMap(5)
	first := 0
	for range seq {
		first++
	}
	store.Upsert(Character{ID: 3, Map: 5})
	second := 0
	for range seq {
		second++
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected a fresh pass per iteration, got %d then %d", first, second)
	}
}

func TestCustomMarkerStoreSortsNewestFirst(t *testing.T) {
	store := newCustomMarkerStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.Upsert(CustomMarker{ID: 1, Map: 5, PlacedAt: base})
	store.Upsert(CustomMarker{ID: 2, Map: 5, PlacedAt: base.Add(2 * time.Hour)})
	store.Upsert(CustomMarker{ID: 3, Map: 5, PlacedAt: base.Add(time.Hour)})

	var order []EntityID
	for m := range store.All() {
		order = append(order, m.ID)
	}
	if order[0] != 2 || order[1] != 3 || order[2] != 1 {
		t.Fatalf("expected newest-first order 2,3,1, got %v", order)
	}
}

func TestCustomMarkerStoreNormalizesToUTC(t *testing.T) {
	store := newCustomMarkerStore()
	zone := time.FixedZone("ambiguous", 3*3600)
	store.Upsert(CustomMarker{ID: 1, Map: 5, PlacedAt: time.Date(2026, 8, 1, 15, 0, 0, 0, zone)})

	got, ok := store.Get(1)
	if !ok {
		t.Fatalf("marker missing after upsert")
	}
	if got.PlacedAt.Location() != time.UTC {
		t.Fatalf("expected UTC placement time, got %v", got.PlacedAt.Location())
	}
	if got.PlacedAt.Hour() != 12 {
		t.Fatalf("expected instant preserved under conversion, got hour %d", got.PlacedAt.Hour())
	}
}
