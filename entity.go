package client

import "time"

// TenantID tags every entity and inbound event with the isolation boundary it
// belongs to. Events for a foreign tenant are dropped before reconciliation.
type TenantID int64

// MapID identifies one map in the shared world.
type MapID int64

// EntityID is the server-assigned identity for row-backed entities.
type EntityID int64

// GridKey addresses a game marker by its grid segment and local position.
// Game markers are not server-row-backed, so their identity is this composite
// value rather than an EntityID.
type GridKey struct {
	Grid int64 `json:"grid"`
	X    int32 `json:"x"`
	Y    int32 `json:"y"`
}

// Kind discriminates the entity collections held by a session.
type Kind string

const (
	KindCharacter    Kind = "character"
	KindMarker       Kind = "marker"
	KindCustomMarker Kind = "customMarker"
	KindPing         Kind = "ping"
	KindNotification Kind = "notification"
	KindTimer        Kind = "timer"
)

// Character is another player's live position on the shared map. Characters
// carry no hidden flag; they are visible for as long as they are present.
type Character struct {
	ID     EntityID `json:"id"`
	Tenant TenantID `json:"tenant"`
	Map    MapID    `json:"map"`
	Name   string   `json:"name"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Type   string   `json:"type,omitempty"`
}

func (c Character) Key() EntityID      { return c.ID }
func (c Character) MapID() MapID       { return c.Map }
func (c Character) TenantID() TenantID { return c.Tenant }

// MarkerType is the closed variant set of server marker flavors. Visibility
// rules branch on this set exhaustively, never on free-form strings.
type MarkerType string

const (
	MarkerThingwall MarkerType = "thingwall"
	MarkerQuest     MarkerType = "quest"
	MarkerGeneric   MarkerType = "generic"
)

// markerTypeKnown is the authoritative membership table for MarkerType.
var markerTypeKnown = map[MarkerType]bool{
	MarkerThingwall: true,
	MarkerQuest:     true,
	MarkerGeneric:   true,
}

// Valid reports whether the marker type belongs to the closed variant set.
func (t MarkerType) Valid() bool { return markerTypeKnown[t] }

// Marker is a server-published map marker addressed by grid position.
type Marker struct {
	Pos    GridKey    `json:"pos"`
	Tenant TenantID   `json:"tenant"`
	Map    MapID      `json:"map"`
	Type   MarkerType `json:"type"`
	Name   string     `json:"name"`
	Hidden bool       `json:"hidden,omitempty"`
}

func (m Marker) Key() GridKey       { return m.Pos }
func (m Marker) MapID() MapID       { return m.Map }
func (m Marker) TenantID() TenantID { return m.Tenant }

// CustomMarker is a user-placed marker. Placement timestamps are normalized
// to UTC on upsert and the store keeps markers ordered newest first.
type CustomMarker struct {
	ID       EntityID  `json:"id"`
	Tenant   TenantID  `json:"tenant"`
	Map      MapID     `json:"map"`
	Name     string    `json:"name"`
	Color    string    `json:"color,omitempty"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	PlacedAt time.Time `json:"placedAt"`
	Hidden   bool      `json:"hidden,omitempty"`
}

func (m CustomMarker) Key() EntityID      { return m.ID }
func (m CustomMarker) MapID() MapID       { return m.Map }
func (m CustomMarker) TenantID() TenantID { return m.Tenant }

// Ping is a transient attention signal placed by another client.
type Ping struct {
	ID     EntityID `json:"id"`
	Tenant TenantID `json:"tenant"`
	Map    MapID    `json:"map"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	SentBy EntityID `json:"sentBy,omitempty"`
	SentAt int64    `json:"sentAt"`
}

func (p Ping) Key() EntityID      { return p.ID }
func (p Ping) MapID() MapID       { return p.Map }
func (p Ping) TenantID() TenantID { return p.Tenant }

// Notification is a broadcast message scoped to a map and tenant.
type Notification struct {
	ID     EntityID `json:"id"`
	Tenant TenantID `json:"tenant"`
	Map    MapID    `json:"map"`
	Text   string   `json:"text"`
	SentAt int64    `json:"sentAt"`
}

func (n Notification) Key() EntityID      { return n.ID }
func (n Notification) MapID() MapID       { return n.Map }
func (n Notification) TenantID() TenantID { return n.Tenant }

// Timer is a shared countdown anchored to a map position.
type Timer struct {
	ID       EntityID `json:"id"`
	Tenant   TenantID `json:"tenant"`
	Map      MapID    `json:"map"`
	Label    string   `json:"label"`
	ExpireAt int64    `json:"expireAt"`
}

func (t Timer) Key() EntityID      { return t.ID }
func (t Timer) MapID() MapID       { return t.Map }
func (t Timer) TenantID() TenantID { return t.Tenant }
