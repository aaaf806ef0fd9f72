package syncevents

import (
	"context"

	"driftmap/client/logging"
)

const (
	// EventTenantMismatch is emitted when an inbound event carried a tenant
	// tag other than the active context and was discarded.
	EventTenantMismatch logging.EventType = "sync.tenant_mismatch"
	// EventMalformedPayload is emitted when a sub-part of an inbound payload
	// failed validation and was skipped.
	EventMalformedPayload logging.EventType = "sync.malformed_payload"
	// EventRevisionIgnored is emitted when a delivered revision was stale or
	// equal and therefore ignored.
	EventRevisionIgnored logging.EventType = "sync.revision_ignored"
	// EventFollowDropped is emitted when the followed character left the
	// store and follow mode reset to idle.
	EventFollowDropped logging.EventType = "sync.follow_dropped"
	// EventSequenceGap is emitted when the push channel skipped ahead of the
	// last applied sequence.
	EventSequenceGap logging.EventType = "transport.sequence_gap"
	// EventStaleContext is emitted when a map-scoped payload arrived after
	// navigation already left that map.
	EventStaleContext logging.EventType = "sync.stale_context"
)

// TenantPayload captures the tenant pair behind a mismatch drop.
type TenantPayload struct {
	Active   int64 `json:"active"`
	Received int64 `json:"received"`
}

// TenantMismatch publishes a debug event for a discarded foreign-tenant event.
func TenantMismatch(ctx context.Context, pub logging.Publisher, seq uint64, payload TenantPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTenantMismatch,
		Seq:      seq,
		Subject:  logging.EntityRef{Kind: logging.EntityKindSession},
		Severity: logging.SeverityDebug,
		Category: logging.CategorySync,
		Payload:  payload,
	})
}

// MalformedPayload publishes a warning for a skipped payload sub-part.
func MalformedPayload(ctx context.Context, pub logging.Publisher, seq uint64, section, detail string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMalformedPayload,
		Seq:      seq,
		Subject:  logging.EntityRef{ID: section, Kind: logging.EntityKindSession},
		Severity: logging.SeverityWarn,
		Category: logging.CategorySync,
		Payload:  map[string]string{"detail": detail},
	})
}

// RevisionPayload captures a rejected revision observation.
type RevisionPayload struct {
	Held     int64 `json:"held"`
	Received int64 `json:"received"`
}

// RevisionIgnored publishes a debug event for a stale or equal revision.
func RevisionIgnored(ctx context.Context, pub logging.Publisher, seq uint64, subject logging.EntityRef, payload RevisionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRevisionIgnored,
		Seq:      seq,
		Subject:  subject,
		Severity: logging.SeverityDebug,
		Category: logging.CategorySync,
		Payload:  payload,
	})
}

// FollowDropped publishes an info event when follow mode resets because the
// followed character disappeared.
func FollowDropped(ctx context.Context, pub logging.Publisher, seq uint64, subject logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventFollowDropped,
		Seq:      seq,
		Subject:  subject,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySync,
	})
}

// SequencePayload captures a push-channel sequence discontinuity.
type SequencePayload struct {
	Last     uint64 `json:"last"`
	Received uint64 `json:"received"`
}

// SequenceGap publishes a warning when the push channel skipped sequences.
func SequenceGap(ctx context.Context, pub logging.Publisher, seq uint64, payload SequencePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSequenceGap,
		Seq:      seq,
		Subject:  logging.EntityRef{Kind: logging.EntityKindSession},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryTransport,
		Payload:  payload,
	})
}

// StaleContext publishes a debug event for a payload dropped after a map or
// tenant switch.
func StaleContext(ctx context.Context, pub logging.Publisher, seq uint64, subject logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStaleContext,
		Seq:      seq,
		Subject:  subject,
		Severity: logging.SeverityDebug,
		Category: logging.CategorySync,
	})
}
