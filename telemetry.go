package client

import (
	"fmt"
	"os"
	"sync/atomic"
)

type telemetryCounters struct {
	snapshotsApplied  atomic.Uint64
	deltasApplied     atomic.Uint64
	pollsMerged       atomic.Uint64
	entitiesUpserted  atomic.Uint64
	entitiesRemoved   atomic.Uint64
	tenantDrops       atomic.Uint64
	staleContextDrops atomic.Uint64
	malformedSections atomic.Uint64
	revisionsAdvanced atomic.Uint64
	revisionsIgnored  atomic.Uint64
	tilesInvalidated  atomic.Uint64
	followDrops       atomic.Uint64
	sequenceGaps      atomic.Uint64
	debug             bool
}

// TelemetrySnapshot is a point-in-time copy of the session counters.
type TelemetrySnapshot struct {
	SnapshotsApplied  uint64 `json:"snapshotsApplied"`
	DeltasApplied     uint64 `json:"deltasApplied"`
	PollsMerged       uint64 `json:"pollsMerged"`
	EntitiesUpserted  uint64 `json:"entitiesUpserted"`
	EntitiesRemoved   uint64 `json:"entitiesRemoved"`
	TenantDrops       uint64 `json:"tenantDrops"`
	StaleContextDrops uint64 `json:"staleContextDrops"`
	MalformedSections uint64 `json:"malformedSections"`
	RevisionsAdvanced uint64 `json:"revisionsAdvanced"`
	RevisionsIgnored  uint64 `json:"revisionsIgnored"`
	TilesInvalidated  uint64 `json:"tilesInvalidated"`
	FollowDrops       uint64 `json:"followDrops"`
	SequenceGaps      uint64 `json:"sequenceGaps"`
}

func newTelemetryCounters() *telemetryCounters {
	t := &telemetryCounters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		t.debug = true
	}
	return t
}

func (t *telemetryCounters) RecordDiff(diff DiffResult) {
	upserted := len(diff.Characters.Added) + len(diff.Characters.Updated) +
		len(diff.Markers.Added) + len(diff.Markers.Updated) +
		len(diff.CustomMarkers.Added) + len(diff.CustomMarkers.Updated) +
		len(diff.Pings.Added) + len(diff.Pings.Updated) +
		len(diff.Notifications.Added) + len(diff.Notifications.Updated) +
		len(diff.Timers.Added) + len(diff.Timers.Updated)
	removed := len(diff.Characters.RemovedIDs) +
		len(diff.Markers.RemovedIDs) +
		len(diff.CustomMarkers.RemovedIDs) +
		len(diff.Pings.RemovedIDs) +
		len(diff.Notifications.RemovedIDs) +
		len(diff.Timers.RemovedIDs)
	t.entitiesUpserted.Add(uint64(upserted))
	t.entitiesRemoved.Add(uint64(removed))
	t.revisionsAdvanced.Add(uint64(len(diff.RevisionsChanged)))
	t.tilesInvalidated.Add(uint64(len(diff.TilesChanged)))
	if t.debug {
		fmt.Printf("[telemetry] seq=%d upserted=%d removed=%d revisions=%d tiles=%d\n",
			diff.Seq, upserted, removed, len(diff.RevisionsChanged), len(diff.TilesChanged))
	}
}

func (t *telemetryCounters) IncrementSnapshot()     { t.snapshotsApplied.Add(1) }
func (t *telemetryCounters) IncrementDelta()        { t.deltasApplied.Add(1) }
func (t *telemetryCounters) IncrementPoll()         { t.pollsMerged.Add(1) }
func (t *telemetryCounters) IncrementTenantDrop()   { t.tenantDrops.Add(1) }
func (t *telemetryCounters) IncrementStaleContext() { t.staleContextDrops.Add(1) }
func (t *telemetryCounters) IncrementFollowDrop()   { t.followDrops.Add(1) }
func (t *telemetryCounters) IncrementSequenceGap()  { t.sequenceGaps.Add(1) }

func (t *telemetryCounters) AddMalformed(count int) {
	if count > 0 {
		t.malformedSections.Add(uint64(count))
	}
}

func (t *telemetryCounters) IncrementRevisionIgnored() { t.revisionsIgnored.Add(1) }

func (t *telemetryCounters) DebugEnabled() bool { return t.debug }

func (t *telemetryCounters) Snapshot() TelemetrySnapshot {
	return TelemetrySnapshot{
		SnapshotsApplied:  t.snapshotsApplied.Load(),
		DeltasApplied:     t.deltasApplied.Load(),
		PollsMerged:       t.pollsMerged.Load(),
		EntitiesUpserted:  t.entitiesUpserted.Load(),
		EntitiesRemoved:   t.entitiesRemoved.Load(),
		TenantDrops:       t.tenantDrops.Load(),
		StaleContextDrops: t.staleContextDrops.Load(),
		MalformedSections: t.malformedSections.Load(),
		RevisionsAdvanced: t.revisionsAdvanced.Load(),
		RevisionsIgnored:  t.revisionsIgnored.Load(),
		TilesInvalidated:  t.tilesInvalidated.Load(),
		FollowDrops:       t.followDrops.Load(),
		SequenceGaps:      t.sequenceGaps.Load(),
	}
}
