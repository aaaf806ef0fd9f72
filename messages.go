package client

// ProtocolVersion is stamped on every wire message the core understands.
const ProtocolVersion = 1

// MessageType discriminates wire envelopes.
type MessageType string

const (
	// MessageSnapshot carries authoritative full contents for one or more
	// entity kinds, delivered on (re)connect or map switch.
	MessageSnapshot MessageType = "snapshot"
	// MessageDelta carries incremental upserts and deletions in push order.
	MessageDelta MessageType = "delta"
	// MessagePoll carries the fallback poll bundle: revisions, changed
	// tiles, and optionally a full character list.
	MessagePoll MessageType = "poll"
)

// RemovedSet lists deleted identities per entity kind within one delta.
type RemovedSet struct {
	Characters    []EntityID `json:"characters,omitempty"`
	Markers       []GridKey  `json:"markers,omitempty"`
	CustomMarkers []EntityID `json:"customMarkers,omitempty"`
	Pings         []EntityID `json:"pings,omitempty"`
	Notifications []EntityID `json:"notifications,omitempty"`
	Timers        []EntityID `json:"timers,omitempty"`
}

// SnapshotMessage replaces store contents wholesale. Kinds names the
// collections this snapshot is authoritative for; a kind listed there with no
// items means the collection is now empty, while an unlisted kind is left
// untouched. A non-zero Map scopes the replacement to that map's slice.
type SnapshotMessage struct {
	Ver           int            `json:"ver"`
	Type          MessageType    `json:"type"`
	Tenant        TenantID       `json:"tenant"`
	Sequence      uint64         `json:"sequence"`
	Map           MapID          `json:"map,omitempty"`
	Kinds         []Kind         `json:"kinds"`
	Characters    []Character    `json:"characters,omitempty"`
	Markers       []Marker       `json:"markers,omitempty"`
	CustomMarkers []CustomMarker `json:"customMarkers,omitempty"`
	Pings         []Ping         `json:"pings,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
	Timers        []Timer        `json:"timers,omitempty"`
	Revisions     []MapRevision  `json:"revisions,omitempty"`
}

// DeltaMessage applies incremental changes against existing store state.
type DeltaMessage struct {
	Ver           int            `json:"ver"`
	Type          MessageType    `json:"type"`
	Tenant        TenantID       `json:"tenant"`
	Sequence      uint64         `json:"sequence"`
	Characters    []Character    `json:"characters,omitempty"`
	Markers       []Marker       `json:"markers,omitempty"`
	CustomMarkers []CustomMarker `json:"customMarkers,omitempty"`
	Pings         []Ping         `json:"pings,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
	Timers        []Timer        `json:"timers,omitempty"`
	Removed       RemovedSet     `json:"removed,omitempty"`
	Revisions     []MapRevision  `json:"revisions,omitempty"`
}

// TileChange records that one tile cell changed at a point in time. The core
// does not hold tile bytes; it forwards these to the tile-cache collaborator.
type TileChange struct {
	Map       MapID `json:"map"`
	X         int32 `json:"x"`
	Y         int32 `json:"y"`
	Zoom      int   `json:"zoom"`
	ChangedAt int64 `json:"changedAt"`
}

// PollResponse is the pull-channel fallback bundle. Characters is a pointer
// on purpose: a nil list means the requester lacks visibility permission and
// the character store must be left alone, never emptied. A non-nil empty
// list is an authoritative "no characters". Markers follow the same rule and
// are scoped to Map when present.
type PollResponse struct {
	Ver        int           `json:"ver"`
	Type       MessageType   `json:"type"`
	Tenant     TenantID      `json:"tenant"`
	Map        MapID         `json:"map,omitempty"`
	Revisions  []MapRevision `json:"revisions"`
	Tiles      []TileChange  `json:"tiles,omitempty"`
	Characters *[]Character  `json:"characters,omitempty"`
	Markers    *[]Marker     `json:"markers,omitempty"`
}

// DiffResult aggregates everything one ingest call changed, per kind, for
// consumers to apply incrementally instead of re-scanning full state.
type DiffResult struct {
	Seq              uint64
	Characters       Diff[EntityID, Character]
	Markers          Diff[GridKey, Marker]
	CustomMarkers    Diff[EntityID, CustomMarker]
	Pings            Diff[EntityID, Ping]
	Notifications    Diff[EntityID, Notification]
	Timers           Diff[EntityID, Timer]
	RevisionsChanged []MapRevision
	TilesChanged     []TileChange
	FollowChanged    bool
}

// Empty reports whether the ingest changed nothing observable.
func (r DiffResult) Empty() bool {
	return r.Characters.Empty() &&
		r.Markers.Empty() &&
		r.CustomMarkers.Empty() &&
		r.Pings.Empty() &&
		r.Notifications.Empty() &&
		r.Timers.Empty() &&
		len(r.RevisionsChanged) == 0 &&
		len(r.TilesChanged) == 0 &&
		!r.FollowChanged
}

// DropReason explains why an ingest call was discarded without touching any
// store.
type DropReason string

const (
	// DropTenantMismatch tags events for a tenant other than the active one.
	DropTenantMismatch DropReason = "tenant_mismatch"
	// DropStaleContext tags map-scoped events that arrived after the client
	// already navigated away from that map.
	DropStaleContext DropReason = "stale_context"
	// DropBadVersion tags envelopes with an unsupported protocol version.
	DropBadVersion DropReason = "bad_version"
)

// IngestReport is the partial-success result of one ingest call. Nothing in
// the ingest path panics or fails fatally; the transport layer inspects the
// report to decide whether a fresh snapshot is worth requesting.
type IngestReport struct {
	Applied   bool
	Drop      DropReason
	Malformed []string
	Diff      DiffResult
}

// Clean reports whether the call applied without skipping any sub-part.
func (r IngestReport) Clean() bool {
	return r.Applied && len(r.Malformed) == 0
}
