package client

import (
	"context"
	"strconv"

	"driftmap/client/logging"
	"driftmap/client/logging/syncevents"
)

// StartFollow locks the viewport onto a character. Rejected when the
// character is not currently in the store.
func (s *Session) StartFollow(id EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.follow.Start(id)
}

// StopFollow returns follow mode to idle.
func (s *Session) StopFollow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.follow.Stop()
}

// SwitchMap changes the displayed map. The switch tears the map session
// down in one step: every store is cleared and follow resets, so payloads
// for the old map that are still in flight reconcile against nothing and
// their map tag fails the ingest gate.
func (s *Session) SwitchMap(ctx context.Context, mapID MapID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.nav.SwitchMap(mapID) {
		return false
	}
	s.teardownLocked(ctx)
	return true
}

// SwitchTenant changes the active tenant context, clearing all state.
func (s *Session) SwitchTenant(ctx context.Context, tenant TenantID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.nav.SwitchTenant(tenant) {
		return false
	}
	s.teardownLocked(ctx)
	return true
}

// Reset clears all session state explicitly, keeping navigation where it is.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked(ctx)
}

// SetCamera moves the viewport.
func (s *Session) SetCamera(cam Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.SetCamera(cam)
}

// SetOverlay toggles a named overlay.
func (s *Session) SetOverlay(name string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.SetOverlay(name, on)
}

// CurrentMap returns the displayed map.
func (s *Session) CurrentMap() MapID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.CurrentMap()
}

// Tenant returns the active tenant context.
func (s *Session) Tenant() TenantID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Tenant()
}

// ConsumeRefreshHint hands the transport layer the pending fresh-snapshot
// hint, if any. Consuming resets the underlying counters.
func (s *Session) ConsumeRefreshHint() (RefreshHint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh.consume()
}

// ReplayDiffs returns the journaled diffs after the given sequence, oldest
// first. ok false means the journal no longer reaches back that far and the
// consumer must re-read full state.
func (s *Session) ReplayDiffs(since uint64) ([]JournalEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Replay(since)
}

func (s *Session) teardownLocked(ctx context.Context) {
	hadFollow := s.follow.State().IsFollowing
	followed := s.follow.State().FollowedID
	s.characters.Clear()
	s.markers.Clear()
	s.customMarkers.Clear()
	s.pings.Clear()
	s.notifications.Clear()
	s.timers.Clear()
	s.follow.Stop()
	s.journal.Reset()
	s.lastPushSeq = 0
	s.pushSeqKnown = false
	if hadFollow {
		syncevents.FollowDropped(ctx, s.publisher, s.diffSeq, logging.EntityRef{
			ID:   strconv.FormatInt(int64(followed), 10),
			Kind: logging.EntityKindCharacter,
		})
	}
}
