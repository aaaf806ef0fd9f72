package client

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"driftmap/client/logging"
	"driftmap/client/logging/syncevents"
)

// Session owns the authoritative local view of the shared map for one tenant
// context: every entity store, the revision tracker, navigation, and follow
// state. It never initiates network calls; transports push payloads in and
// consumers read filtered views and diffs out.
//
// All mutation is serialized behind one mutex. The push stream and the poll
// fallback deliver concurrently, and interleaving their raw writes would
// lose updates, so each ingest call owns the whole state for its duration.
type Session struct {
	mu sync.Mutex

	cfg       Config
	nav       *NavigationState
	revisions *RevisionTracker

	characters    *Store[EntityID, Character]
	markers       *Store[GridKey, Marker]
	customMarkers *Store[EntityID, CustomMarker]
	pings         *Store[EntityID, Ping]
	notifications *Store[EntityID, Notification]
	timers        *Store[EntityID, Timer]

	follow    *FollowController
	journal   *DiffJournal
	refresh   *refreshPolicy
	counters  *telemetryCounters
	publisher logging.Publisher
	consumers []func(DiffResult)

	diffSeq      uint64
	lastPushSeq  uint64
	pushSeqKnown bool

	// revisions advanced during the current ingest call, collected via the
	// tracker's invalidate callback.
	advanced []MapRevision
}

// NewSession constructs an empty session for the configured tenant. publisher
// may be nil; diagnostics are then discarded.
func NewSession(cfg Config, publisher logging.Publisher) *Session {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	s := &Session{
		cfg:           cfg,
		nav:           NewNavigationState(TenantID(cfg.Tenant)),
		characters:    newCharacterStore(),
		markers:       newMarkerStore(),
		customMarkers: newCustomMarkerStore(),
		pings:         newPingStore(),
		notifications: newNotificationStore(),
		timers:        newTimerStore(),
		journal:       NewDiffJournal(cfg.JournalCapacity, cfg.JournalMaxAge),
		refresh:       newRefreshPolicy(),
		counters:      newTelemetryCounters(),
		publisher:     publisher,
	}
	s.revisions = NewRevisionTracker(func(mapID MapID, revision int64) {
		s.advanced = append(s.advanced, MapRevision{Map: mapID, Revision: revision})
	})
	s.follow = NewFollowController(s.characters)
	return s
}

// Subscribe registers a consumer notified with the DiffResult of every
// ingest call that reached reconciliation. Notification happens outside the
// session lock, in registration order.
func (s *Session) Subscribe(fn func(DiffResult)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.consumers = append(s.consumers, fn)
	s.mu.Unlock()
}

// OnSnapshot ingests authoritative full contents for the kinds the message
// names. Kinds not named stay untouched; a named kind with no items empties
// that store. A non-zero Map restricts the replacement to that map's slice.
func (s *Session) OnSnapshot(ctx context.Context, msg SnapshotMessage) IngestReport {
	s.mu.Lock()
	report := IngestReport{}
	if drop := s.gateLocked(ctx, msg.Ver, msg.Tenant, msg.Map); drop != "" {
		report.Drop = drop
		s.mu.Unlock()
		return report
	}
	s.refresh.noteEvent()
	s.counters.IncrementSnapshot()

	diff := DiffResult{}
	for _, kind := range msg.Kinds {
		switch kind {
		case KindCharacter:
			items := siftItems(ctx, s, string(KindCharacter), msg.Characters, Character.validate, &report)
			diff.Characters = s.replaceCharactersLocked(msg.Map, items)
		case KindMarker:
			items := siftItems(ctx, s, string(KindMarker), msg.Markers, Marker.validate, &report)
			if msg.Map != 0 {
				diff.Markers = ApplyScopedSnapshot(s.markers, msg.Map, items)
			} else {
				diff.Markers = ApplySnapshot(s.markers, items)
			}
		case KindCustomMarker:
			items := siftItems(ctx, s, string(KindCustomMarker), msg.CustomMarkers, CustomMarker.validate, &report)
			if msg.Map != 0 {
				diff.CustomMarkers = ApplyScopedSnapshot(s.customMarkers, msg.Map, items)
			} else {
				diff.CustomMarkers = ApplySnapshot(s.customMarkers, items)
			}
		case KindPing:
			items := siftItems(ctx, s, string(KindPing), msg.Pings, Ping.validate, &report)
			if msg.Map != 0 {
				diff.Pings = ApplyScopedSnapshot(s.pings, msg.Map, items)
			} else {
				diff.Pings = ApplySnapshot(s.pings, items)
			}
		case KindNotification:
			items := siftItems(ctx, s, string(KindNotification), msg.Notifications, Notification.validate, &report)
			if msg.Map != 0 {
				diff.Notifications = ApplyScopedSnapshot(s.notifications, msg.Map, items)
			} else {
				diff.Notifications = ApplySnapshot(s.notifications, items)
			}
		case KindTimer:
			items := siftItems(ctx, s, string(KindTimer), msg.Timers, Timer.validate, &report)
			if msg.Map != 0 {
				diff.Timers = ApplyScopedSnapshot(s.timers, msg.Map, items)
			} else {
				diff.Timers = ApplySnapshot(s.timers, items)
			}
		default:
			s.noteMalformed(ctx, &report, "kinds", fmt.Sprintf("unknown kind %q", kind))
		}
	}

	s.applyRevisionsLocked(ctx, msg.Revisions, &diff, &report)
	diff.FollowChanged = s.settleFollowLocked(ctx, diff.Characters.RemovedIDs)

	// A snapshot re-baselines the push channel; earlier sequence state is
	// obsolete once full contents arrive.
	s.lastPushSeq = msg.Sequence
	s.pushSeqKnown = msg.Sequence != 0

	s.finishLocked(&diff, &report)
	return s.emit(report)
}

// OnDelta ingests one incremental batch from the push channel.
func (s *Session) OnDelta(ctx context.Context, msg DeltaMessage) IngestReport {
	s.mu.Lock()
	report := IngestReport{}
	if drop := s.gateLocked(ctx, msg.Ver, msg.Tenant, 0); drop != "" {
		report.Drop = drop
		s.mu.Unlock()
		return report
	}
	s.refresh.noteEvent()
	s.counters.IncrementDelta()
	s.trackSequenceLocked(ctx, msg.Sequence)

	diff := DiffResult{}
	diff.Characters = ApplyDelta(s.characters, DeltaBatch[EntityID, Character]{
		Updates:   siftItems(ctx, s, string(KindCharacter), msg.Characters, Character.validate, &report),
		Deletions: msg.Removed.Characters,
	})
	diff.Markers = ApplyDelta(s.markers, DeltaBatch[GridKey, Marker]{
		Updates:   siftItems(ctx, s, string(KindMarker), msg.Markers, Marker.validate, &report),
		Deletions: msg.Removed.Markers,
	})
	diff.CustomMarkers = ApplyDelta(s.customMarkers, DeltaBatch[EntityID, CustomMarker]{
		Updates:   siftItems(ctx, s, string(KindCustomMarker), msg.CustomMarkers, CustomMarker.validate, &report),
		Deletions: msg.Removed.CustomMarkers,
	})
	diff.Pings = ApplyDelta(s.pings, DeltaBatch[EntityID, Ping]{
		Updates:   siftItems(ctx, s, string(KindPing), msg.Pings, Ping.validate, &report),
		Deletions: msg.Removed.Pings,
	})
	diff.Notifications = ApplyDelta(s.notifications, DeltaBatch[EntityID, Notification]{
		Updates:   siftItems(ctx, s, string(KindNotification), msg.Notifications, Notification.validate, &report),
		Deletions: msg.Removed.Notifications,
	})
	diff.Timers = ApplyDelta(s.timers, DeltaBatch[EntityID, Timer]{
		Updates:   siftItems(ctx, s, string(KindTimer), msg.Timers, Timer.validate, &report),
		Deletions: msg.Removed.Timers,
	})

	s.applyRevisionsLocked(ctx, msg.Revisions, &diff, &report)
	diff.FollowChanged = s.settleFollowLocked(ctx, diff.Characters.RemovedIDs)

	s.finishLocked(&diff, &report)
	return s.emit(report)
}

// OnPollResponse merges one poll bundle. Well-formed sub-parts apply even
// when others are skipped; nothing previously applied is rolled back.
func (s *Session) OnPollResponse(ctx context.Context, msg PollResponse) IngestReport {
	s.mu.Lock()
	report := IngestReport{}
	if drop := s.gateLocked(ctx, msg.Ver, msg.Tenant, msg.Map); drop != "" {
		report.Drop = drop
		s.mu.Unlock()
		return report
	}
	s.refresh.noteEvent()
	s.counters.IncrementPoll()

	diff := DiffResult{}
	s.applyRevisionsLocked(ctx, msg.Revisions, &diff, &report)

	for _, tile := range msg.Tiles {
		if tile.Map == 0 {
			s.noteMalformed(ctx, &report, "tiles", "tile change missing map")
			continue
		}
		diff.TilesChanged = append(diff.TilesChanged, tile)
	}

	// Absent characters means no visibility permission, never zero
	// characters. Only a present list is authoritative.
	if msg.Characters != nil {
		items := siftItems(ctx, s, string(KindCharacter), *msg.Characters, Character.validate, &report)
		diff.Characters = s.replaceCharactersLocked(0, items)
	}

	if msg.Markers != nil {
		if msg.Map == 0 {
			s.noteMalformed(ctx, &report, "markers", "scoped marker list missing map")
		} else {
			items := siftItems(ctx, s, string(KindMarker), *msg.Markers, Marker.validate, &report)
			diff.Markers = ApplyScopedSnapshot(s.markers, msg.Map, items)
		}
	}

	diff.FollowChanged = s.settleFollowLocked(ctx, diff.Characters.RemovedIDs)

	s.finishLocked(&diff, &report)
	return s.emit(report)
}

// gateLocked applies the drop rules shared by all ingest paths: protocol
// version, tenant isolation, and map-scope staleness after navigation.
func (s *Session) gateLocked(ctx context.Context, ver int, tenant TenantID, mapID MapID) DropReason {
	if ver > ProtocolVersion {
		return DropBadVersion
	}
	if !s.nav.Accepts(tenant) {
		s.counters.IncrementTenantDrop()
		syncevents.TenantMismatch(ctx, s.publisher, s.diffSeq, syncevents.TenantPayload{
			Active:   int64(s.nav.Tenant()),
			Received: int64(tenant),
		})
		return DropTenantMismatch
	}
	if mapID != 0 && s.nav.CurrentMap() != 0 && mapID != s.nav.CurrentMap() {
		s.counters.IncrementStaleContext()
		syncevents.StaleContext(ctx, s.publisher, s.diffSeq, logging.EntityRef{
			ID:   strconv.FormatInt(int64(mapID), 10),
			Kind: logging.EntityKindMap,
		})
		return DropStaleContext
	}
	return ""
}

// siftItems validates one payload section item by item, keeping the
// well-formed subset and reporting the rest. Entities tagged for a foreign
// tenant are discarded here as well; the envelope gate only sees the
// envelope tag.
func siftItems[T interface{ TenantID() TenantID }](ctx context.Context, s *Session, section string, items []T, validate func(T) error, report *IngestReport) []T {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if err := validate(item); err != nil {
			s.noteMalformed(ctx, report, section, err.Error())
			continue
		}
		if !s.nav.Accepts(item.TenantID()) {
			s.counters.IncrementTenantDrop()
			syncevents.TenantMismatch(ctx, s.publisher, s.diffSeq, syncevents.TenantPayload{
				Active:   int64(s.nav.Tenant()),
				Received: int64(item.TenantID()),
			})
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func (s *Session) replaceCharactersLocked(mapID MapID, items []Character) Diff[EntityID, Character] {
	if mapID != 0 {
		return ApplyScopedSnapshot(s.characters, mapID, items)
	}
	return ApplySnapshot(s.characters, items)
}

func (s *Session) applyRevisionsLocked(ctx context.Context, revisions []MapRevision, diff *DiffResult, report *IngestReport) {
	for _, rev := range revisions {
		if rev.Map == 0 || rev.Revision <= 0 {
			s.noteMalformed(ctx, report, "revisions", fmt.Sprintf("invalid revision %+v", rev))
			continue
		}
		if !s.revisions.Set(rev.Map, rev.Revision) {
			s.counters.IncrementRevisionIgnored()
			syncevents.RevisionIgnored(ctx, s.publisher, s.diffSeq, logging.EntityRef{
				ID:   strconv.FormatInt(int64(rev.Map), 10),
				Kind: logging.EntityKindMap,
			}, syncevents.RevisionPayload{
				Held:     s.revisions.Get(rev.Map),
				Received: rev.Revision,
			})
		}
	}
	diff.RevisionsChanged = append(diff.RevisionsChanged, s.advanced...)
	s.advanced = s.advanced[:0]
}

func (s *Session) trackSequenceLocked(ctx context.Context, seq uint64) {
	if seq == 0 {
		return
	}
	if s.pushSeqKnown && seq > s.lastPushSeq+1 {
		s.counters.IncrementSequenceGap()
		s.refresh.noteLost("sequence_gap", strconv.FormatUint(seq, 10))
		syncevents.SequenceGap(ctx, s.publisher, s.diffSeq, syncevents.SequencePayload{
			Last:     s.lastPushSeq,
			Received: seq,
		})
	}
	if seq > s.lastPushSeq {
		s.lastPushSeq = seq
	}
	s.pushSeqKnown = true
}

func (s *Session) settleFollowLocked(ctx context.Context, removed []EntityID) bool {
	prev := s.follow.State()
	changed := s.follow.HandleRemoved(removed)
	if s.follow.Revalidate() {
		changed = true
	}
	if changed {
		s.counters.IncrementFollowDrop()
		syncevents.FollowDropped(ctx, s.publisher, s.diffSeq, logging.EntityRef{
			ID:   strconv.FormatInt(int64(prev.FollowedID), 10),
			Kind: logging.EntityKindCharacter,
		})
	}
	return changed
}

func (s *Session) noteMalformed(ctx context.Context, report *IngestReport, section, detail string) {
	report.Malformed = append(report.Malformed, section+": "+detail)
	s.counters.AddMalformed(1)
	s.refresh.noteLost("malformed_payload", section)
	syncevents.MalformedPayload(ctx, s.publisher, s.diffSeq, section, detail)
}

// finishLocked stamps the diff, records it, and stores it on the report.
// Still holds the lock; emit releases it and notifies consumers.
func (s *Session) finishLocked(diff *DiffResult, report *IngestReport) {
	s.diffSeq++
	diff.Seq = s.diffSeq
	report.Applied = true
	report.Diff = *diff
	s.counters.RecordDiff(*diff)
	s.journal.Record(*diff)
}

// emit releases the lock and delivers the diff to consumers in order.
func (s *Session) emit(report IngestReport) IngestReport {
	consumers := make([]func(DiffResult), len(s.consumers))
	copy(consumers, s.consumers)
	s.mu.Unlock()
	if report.Applied {
		for _, fn := range consumers {
			fn(report.Diff)
		}
	}
	return report
}
