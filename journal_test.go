package client

import (
	"testing"
	"time"
)

func TestJournalCapacityEviction(t *testing.T) {
	journal := NewDiffJournal(2, time.Minute)
	for seq := uint64(1); seq <= 4; seq++ {
		journal.Record(DiffResult{Seq: seq})
	}
	if journal.Len() != 2 {
		t.Fatalf("expected 2 retained entries, got %d", journal.Len())
	}
	entries, ok := journal.Replay(2)
	if !ok {
		t.Fatalf("expected replay from seq 2 to succeed")
	}
	if len(entries) != 2 || entries[0].Seq != 3 || entries[1].Seq != 4 {
		t.Fatalf("unexpected replay %+v", entries)
	}
}

func TestJournalReplayTooFarBack(t *testing.T) {
	journal := NewDiffJournal(2, time.Minute)
	for seq := uint64(1); seq <= 4; seq++ {
		journal.Record(DiffResult{Seq: seq})
	}
	if _, ok := journal.Replay(0); ok {
		t.Fatalf("replay past retained history must fail")
	}
}

func TestJournalAgeEviction(t *testing.T) {
	journal := NewDiffJournal(8, time.Second)
	current := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	journal.now = func() time.Time { return current }

	journal.Record(DiffResult{Seq: 1})
	current = current.Add(2 * time.Second)
	journal.Record(DiffResult{Seq: 2})

	if journal.Len() != 1 {
		t.Fatalf("expected stale entry evicted, len=%d", journal.Len())
	}
	entries, ok := journal.Replay(1)
	if !ok || len(entries) != 1 || entries[0].Seq != 2 {
		t.Fatalf("unexpected replay %+v ok=%v", entries, ok)
	}
}

func TestJournalDisabled(t *testing.T) {
	journal := NewDiffJournal(0, time.Minute)
	journal.Record(DiffResult{Seq: 1})
	if journal.Len() != 0 {
		t.Fatalf("disabled journal must retain nothing")
	}
}
