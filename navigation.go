package client

// Camera is the current viewport: world-space center plus zoom level.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom int     `json:"zoom"`
}

// NavigationState holds the client's current position in the world: active
// tenant, displayed map, camera, and enabled overlays. Stores consult it to
// scope filtered views; ingest consults it to discard events carried over
// from a context the user has already left.
type NavigationState struct {
	tenant   TenantID
	mapID    MapID
	camera   Camera
	overlays map[string]bool
}

// NewNavigationState starts navigation in the given tenant context with no
// map selected.
func NewNavigationState(tenant TenantID) *NavigationState {
	return &NavigationState{
		tenant:   tenant,
		overlays: make(map[string]bool),
	}
}

// Tenant returns the active tenant context.
func (n *NavigationState) Tenant() TenantID { return n.tenant }

// CurrentMap returns the displayed map, zero if none selected yet.
func (n *NavigationState) CurrentMap() MapID { return n.mapID }

// Camera returns the current viewport.
func (n *NavigationState) Camera() Camera { return n.camera }

// SetCamera moves the viewport.
func (n *NavigationState) SetCamera(cam Camera) { n.camera = cam }

// SwitchMap changes the displayed map and reports whether it changed.
func (n *NavigationState) SwitchMap(mapID MapID) bool {
	if n.mapID == mapID {
		return false
	}
	n.mapID = mapID
	return true
}

// SwitchTenant changes the active tenant context and reports whether it
// changed. The session is responsible for clearing all stores when it does.
func (n *NavigationState) SwitchTenant(tenant TenantID) bool {
	if n.tenant == tenant {
		return false
	}
	n.tenant = tenant
	return true
}

// SetOverlay toggles a named overlay on or off.
func (n *NavigationState) SetOverlay(name string, on bool) {
	if on {
		n.overlays[name] = true
		return
	}
	delete(n.overlays, name)
}

// OverlayEnabled reports whether a named overlay is on.
func (n *NavigationState) OverlayEnabled(name string) bool {
	return n.overlays[name]
}

// Accepts reports whether an event tagged with the given tenant belongs to
// the active context. Events for a foreign tenant must be discarded before
// any store mutation.
func (n *NavigationState) Accepts(tenant TenantID) bool {
	return tenant == n.tenant
}
