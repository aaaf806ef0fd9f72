package client

import "time"

// JournalEntry is one retained diff with the wall-clock time it was applied.
type JournalEntry struct {
	Seq  uint64
	At   time.Time
	Diff DiffResult
}

// DiffJournal keeps a rolling buffer of recent diffs so a consumer that
// re-attaches (a panel reopening, a render layer restarting) can replay what
// it missed instead of re-scanning the whole state. Entries age out by count
// and by wall-clock age.
type DiffJournal struct {
	capacity int
	maxAge   time.Duration
	entries  []JournalEntry
	now      func() time.Time
}

// NewDiffJournal builds a journal with the given retention. Non-positive
// capacity disables retention entirely.
func NewDiffJournal(capacity int, maxAge time.Duration) *DiffJournal {
	return &DiffJournal{
		capacity: capacity,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Record appends a diff, evicting entries beyond capacity or age.
func (j *DiffJournal) Record(diff DiffResult) {
	if j.capacity <= 0 {
		return
	}
	now := j.now()
	j.entries = append(j.entries, JournalEntry{Seq: diff.Seq, At: now, Diff: diff})
	j.prune(now)
}

// Replay returns retained entries with sequence greater than since, oldest
// first. ok is false when the journal no longer reaches back far enough, in
// which case the consumer must re-read full state instead.
func (j *DiffJournal) Replay(since uint64) (entries []JournalEntry, ok bool) {
	j.prune(j.now())
	if len(j.entries) == 0 {
		return nil, false
	}
	oldest := j.entries[0].Seq
	if since+1 < oldest {
		return nil, false
	}
	for _, entry := range j.entries {
		if entry.Seq > since {
			entries = append(entries, entry)
		}
	}
	return entries, true
}

// Len reports the number of retained entries.
func (j *DiffJournal) Len() int { return len(j.entries) }

// Reset drops all retained entries.
func (j *DiffJournal) Reset() { j.entries = j.entries[:0] }

func (j *DiffJournal) prune(now time.Time) {
	for len(j.entries) > j.capacity {
		j.entries = j.entries[1:]
	}
	if j.maxAge <= 0 {
		return
	}
	cutoff := now.Add(-j.maxAge)
	for len(j.entries) > 0 && j.entries[0].At.Before(cutoff) {
		j.entries = j.entries[1:]
	}
}
