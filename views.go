package client

import "iter"

// The query surface. Every sequence returned here is a fresh lazy pass over
// live store contents; callers must not hold one across their own mutations.

// CharactersOn yields the characters on one map in arrival order.
func (s *Session) CharactersOn(mapID MapID) iter.Seq[Character] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.characters.ByMap(mapID))
}

// Character looks up one character by id.
func (s *Session) Character(id EntityID) (Character, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.characters.Get(id)
}

// MarkersOn yields non-hidden markers on one map. Overlay toggles resolve
// per marker type through the visibility table; hidden markers stay in the
// store but never surface here.
func (s *Session) MarkersOn(mapID MapID) iter.Seq[Marker] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.markers.Filter(func(m Marker) bool {
		return m.Map == mapID && !m.Hidden && s.markerVisibleLocked(m.Type)
	}))
}

// Marker looks up one marker by its grid key.
func (s *Session) Marker(key GridKey) (Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markers.Get(key)
}

// CustomMarkersOn yields non-hidden custom markers on one map, newest
// placement first.
func (s *Session) CustomMarkersOn(mapID MapID) iter.Seq[CustomMarker] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.customMarkers.Filter(func(m CustomMarker) bool {
		return m.Map == mapID && !m.Hidden
	}))
}

// CustomMarker looks up one custom marker by id.
func (s *Session) CustomMarker(id EntityID) (CustomMarker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customMarkers.Get(id)
}

// PingsOn yields the pings on one map in arrival order.
func (s *Session) PingsOn(mapID MapID) iter.Seq[Ping] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.pings.ByMap(mapID))
}

// NotificationsOn yields the notifications on one map in arrival order.
func (s *Session) NotificationsOn(mapID MapID) iter.Seq[Notification] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.notifications.ByMap(mapID))
}

// TimersOn yields the timers on one map in arrival order.
func (s *Session) TimersOn(mapID MapID) iter.Seq[Timer] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.timers.ByMap(mapID))
}

// CurrentRevision returns the tracked revision for a map, defaulting for
// maps never observed.
func (s *Session) CurrentRevision(mapID MapID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revisions.Get(mapID)
}

// FollowState returns the current follow snapshot.
func (s *Session) FollowState() FollowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.follow.State()
}

// Telemetry returns a point-in-time copy of the session counters.
func (s *Session) Telemetry() TelemetrySnapshot {
	return s.counters.Snapshot()
}

func (s *Session) markerVisibleLocked(t MarkerType) bool {
	overlay, ok := markerOverlay[t]
	if !ok {
		return false
	}
	return s.nav.OverlayEnabled(overlay) || markerDefaultVisible[t]
}

// collect materializes the entries visible at call time and wraps them back
// into a sequence, so the returned view is stable even though the session
// lock is released before iteration happens.
func collect[T any](seq iter.Seq[T]) iter.Seq[T] {
	var items []T
	for item := range seq {
		items = append(items, item)
	}
	return func(yield func(T) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}
