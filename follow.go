package client

// FollowState is the externally visible follow snapshot. FollowedID is only
// meaningful while IsFollowing is true.
type FollowState struct {
	IsFollowing bool     `json:"isFollowing"`
	FollowedID  EntityID `json:"followedId,omitempty"`
}

// FollowController tracks the single character the viewport is locked onto.
// It is layered on the character store: a follow can only start for a
// character that is present, and any reconciliation that removes the
// followed character drops the controller back to idle in the same step.
type FollowController struct {
	chars     *Store[EntityID, Character]
	following bool
	followed  EntityID
}

// NewFollowController binds a controller to the character store it guards.
func NewFollowController(chars *Store[EntityID, Character]) *FollowController {
	return &FollowController{chars: chars}
}

// State returns the current follow snapshot.
func (f *FollowController) State() FollowState {
	if !f.following {
		return FollowState{}
	}
	return FollowState{IsFollowing: true, FollowedID: f.followed}
}

// Start begins following id. The transition is rejected when the character
// is not currently in the store. Reports whether the state changed.
func (f *FollowController) Start(id EntityID) bool {
	if !f.chars.Has(id) {
		return false
	}
	if f.following && f.followed == id {
		return false
	}
	f.following = true
	f.followed = id
	return true
}

// Stop returns to idle. Reports whether the state changed.
func (f *FollowController) Stop() bool {
	if !f.following {
		return false
	}
	f.following = false
	f.followed = 0
	return true
}

// HandleRemoved reacts to the removed-identity set of a character
// reconciliation. If the followed character is among them the controller
// drops to idle. Reports whether the state changed.
func (f *FollowController) HandleRemoved(removed []EntityID) bool {
	if !f.following {
		return false
	}
	for _, id := range removed {
		if id == f.followed {
			return f.Stop()
		}
	}
	return false
}

// Revalidate enforces the no-dangling-follow invariant after wholesale store
// replacement, where no removed-identity set exists. Reports whether the
// state changed.
func (f *FollowController) Revalidate() bool {
	if !f.following || f.chars.Has(f.followed) {
		return false
	}
	return f.Stop()
}
