package client

import "fmt"

// newCharacterStore builds the plain insertion-ordered character store.
func newCharacterStore() *Store[EntityID, Character] {
	return NewStore[EntityID, Character]()
}

// newMarkerStore builds the grid-marker store. Markers keep arrival order;
// the hidden flag is stored faithfully and applied only in filtered views.
func newMarkerStore() *Store[GridKey, Marker] {
	return NewStore[GridKey, Marker]()
}

// newCustomMarkerStore builds the custom-marker store. Timestamps are
// normalized to UTC on the way in since inputs may arrive with an ambiguous
// zone, and iteration stays sorted newest placement first after every upsert.
func newCustomMarkerStore() *Store[EntityID, CustomMarker] {
	return NewStore(
		WithNormalize(func(m CustomMarker) CustomMarker {
			m.PlacedAt = m.PlacedAt.UTC()
			return m
		}),
		WithOrdering(func(a, b CustomMarker) bool {
			if !a.PlacedAt.Equal(b.PlacedAt) {
				return a.PlacedAt.After(b.PlacedAt)
			}
			return a.ID < b.ID
		}),
	)
}

func newPingStore() *Store[EntityID, Ping]                 { return NewStore[EntityID, Ping]() }
func newNotificationStore() *Store[EntityID, Notification] { return NewStore[EntityID, Notification]() }
func newTimerStore() *Store[EntityID, Timer]               { return NewStore[EntityID, Timer]() }

// markerOverlay maps each marker type to the overlay toggle that controls
// it. The table is exhaustive over the closed variant set; extending
// MarkerType without extending this table fails validation, not rendering.
var markerOverlay = map[MarkerType]string{
	MarkerThingwall: "thingwalls",
	MarkerQuest:     "quests",
	MarkerGeneric:   "markers",
}

// markerDefaultVisible controls types shown when their overlay was never
// toggled.
var markerDefaultVisible = map[MarkerType]bool{
	MarkerThingwall: true,
	MarkerQuest:     false,
	MarkerGeneric:   true,
}

func (c Character) validate() error {
	if c.ID == 0 {
		return fmt.Errorf("character: missing id")
	}
	if c.Map == 0 {
		return fmt.Errorf("character %d: missing map", c.ID)
	}
	return nil
}

func (m Marker) validate() error {
	if m.Pos.Grid == 0 {
		return fmt.Errorf("marker: missing grid")
	}
	if m.Map == 0 {
		return fmt.Errorf("marker grid=%d: missing map", m.Pos.Grid)
	}
	if !m.Type.Valid() {
		return fmt.Errorf("marker grid=%d: unknown type %q", m.Pos.Grid, m.Type)
	}
	return nil
}

func (m CustomMarker) validate() error {
	if m.ID == 0 {
		return fmt.Errorf("custom marker: missing id")
	}
	if m.Map == 0 {
		return fmt.Errorf("custom marker %d: missing map", m.ID)
	}
	return nil
}

func (p Ping) validate() error {
	if p.ID == 0 {
		return fmt.Errorf("ping: missing id")
	}
	if p.Map == 0 {
		return fmt.Errorf("ping %d: missing map", p.ID)
	}
	return nil
}

func (n Notification) validate() error {
	if n.ID == 0 {
		return fmt.Errorf("notification: missing id")
	}
	if n.Map == 0 {
		return fmt.Errorf("notification %d: missing map", n.ID)
	}
	return nil
}

func (t Timer) validate() error {
	if t.ID == 0 {
		return fmt.Errorf("timer: missing id")
	}
	if t.Map == 0 {
		return fmt.Errorf("timer %d: missing map", t.ID)
	}
	return nil
}
