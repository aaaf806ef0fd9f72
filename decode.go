package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload reports input that was structurally unusable at the
// envelope level. Section-level damage never surfaces as an error; the
// well-formed subset applies and the skipped sections ride on the report.
var ErrMalformedPayload = errors.New("malformed payload")

// rawEnvelope splits a wire message into independently decodable sections so
// one corrupt section cannot take down the rest of the payload.
type rawEnvelope struct {
	Ver        int             `json:"ver"`
	Type       MessageType     `json:"type"`
	Tenant     TenantID        `json:"tenant"`
	Sequence   uint64          `json:"sequence"`
	Map        MapID           `json:"map"`
	Kinds      json.RawMessage `json:"kinds"`
	Characters json.RawMessage `json:"characters"`
	Markers    json.RawMessage `json:"markers"`
	Custom     json.RawMessage `json:"customMarkers"`
	Pings      json.RawMessage `json:"pings"`
	Notifs     json.RawMessage `json:"notifications"`
	Timers     json.RawMessage `json:"timers"`
	Removed    json.RawMessage `json:"removed"`
	Revisions  json.RawMessage `json:"revisions"`
	Tiles      json.RawMessage `json:"tiles"`
}

// MessageKind peeks at the envelope discriminator without decoding sections.
func MessageKind(data []byte) (MessageType, error) {
	var header struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	switch header.Type {
	case MessageSnapshot, MessageDelta, MessagePoll:
		return header.Type, nil
	default:
		return "", fmt.Errorf("%w: unknown message type %q", ErrMalformedPayload, header.Type)
	}
}

// DecodeSnapshot parses a snapshot envelope, returning the names of any
// sections that had to be skipped.
func DecodeSnapshot(data []byte) (SnapshotMessage, []string, error) {
	raw, err := decodeEnvelope(data)
	if err != nil {
		return SnapshotMessage{}, nil, err
	}
	msg := SnapshotMessage{
		Ver:      raw.Ver,
		Type:     MessageSnapshot,
		Tenant:   raw.Tenant,
		Sequence: raw.Sequence,
		Map:      raw.Map,
	}
	var malformed []string
	decodeSection(raw.Kinds, "kinds", &msg.Kinds, &malformed)
	decodeSection(raw.Characters, "characters", &msg.Characters, &malformed)
	decodeSection(raw.Markers, "markers", &msg.Markers, &malformed)
	decodeSection(raw.Custom, "customMarkers", &msg.CustomMarkers, &malformed)
	decodeSection(raw.Pings, "pings", &msg.Pings, &malformed)
	decodeSection(raw.Notifs, "notifications", &msg.Notifications, &malformed)
	decodeSection(raw.Timers, "timers", &msg.Timers, &malformed)
	decodeSection(raw.Revisions, "revisions", &msg.Revisions, &malformed)
	return msg, malformed, nil
}

// DecodeDelta parses a delta envelope with the same section tolerance.
func DecodeDelta(data []byte) (DeltaMessage, []string, error) {
	raw, err := decodeEnvelope(data)
	if err != nil {
		return DeltaMessage{}, nil, err
	}
	msg := DeltaMessage{
		Ver:      raw.Ver,
		Type:     MessageDelta,
		Tenant:   raw.Tenant,
		Sequence: raw.Sequence,
	}
	var malformed []string
	decodeSection(raw.Characters, "characters", &msg.Characters, &malformed)
	decodeSection(raw.Markers, "markers", &msg.Markers, &malformed)
	decodeSection(raw.Custom, "customMarkers", &msg.CustomMarkers, &malformed)
	decodeSection(raw.Pings, "pings", &msg.Pings, &malformed)
	decodeSection(raw.Notifs, "notifications", &msg.Notifications, &malformed)
	decodeSection(raw.Timers, "timers", &msg.Timers, &malformed)
	decodeSection(raw.Removed, "removed", &msg.Removed, &malformed)
	decodeSection(raw.Revisions, "revisions", &msg.Revisions, &malformed)
	return msg, malformed, nil
}

// DecodePoll parses a poll envelope. Characters and markers keep their
// presence semantics: a section that is absent stays nil, a section that is
// present but corrupt is skipped and also stays nil.
func DecodePoll(data []byte) (PollResponse, []string, error) {
	raw, err := decodeEnvelope(data)
	if err != nil {
		return PollResponse{}, nil, err
	}
	msg := PollResponse{
		Ver:    raw.Ver,
		Type:   MessagePoll,
		Tenant: raw.Tenant,
		Map:    raw.Map,
	}
	var malformed []string
	decodeSection(raw.Revisions, "revisions", &msg.Revisions, &malformed)
	decodeSection(raw.Tiles, "tiles", &msg.Tiles, &malformed)
	if len(raw.Characters) > 0 && !isJSONNull(raw.Characters) {
		var chars []Character
		if err := json.Unmarshal(raw.Characters, &chars); err != nil {
			malformed = append(malformed, "characters: "+err.Error())
		} else {
			if chars == nil {
				chars = []Character{}
			}
			msg.Characters = &chars
		}
	}
	if len(raw.Markers) > 0 && !isJSONNull(raw.Markers) {
		var markers []Marker
		if err := json.Unmarshal(raw.Markers, &markers); err != nil {
			malformed = append(malformed, "markers: "+err.Error())
		} else {
			if markers == nil {
				markers = []Marker{}
			}
			msg.Markers = &markers
		}
	}
	return msg, malformed, nil
}

// IngestRaw decodes one wire frame and routes it to the matching ingest
// path. Section-level decode damage is folded into the report alongside any
// item-level damage found during reconciliation.
func (s *Session) IngestRaw(ctx context.Context, data []byte) (IngestReport, error) {
	kind, err := MessageKind(data)
	if err != nil {
		s.noteDecodeFailure(ctx, "envelope")
		return IngestReport{}, err
	}
	switch kind {
	case MessageSnapshot:
		msg, malformed, err := DecodeSnapshot(data)
		if err != nil {
			s.noteDecodeFailure(ctx, "snapshot")
			return IngestReport{}, err
		}
		report := s.OnSnapshot(ctx, msg)
		report.Malformed = append(malformed, report.Malformed...)
		return report, nil
	case MessageDelta:
		msg, malformed, err := DecodeDelta(data)
		if err != nil {
			s.noteDecodeFailure(ctx, "delta")
			return IngestReport{}, err
		}
		report := s.OnDelta(ctx, msg)
		report.Malformed = append(malformed, report.Malformed...)
		return report, nil
	default:
		msg, malformed, err := DecodePoll(data)
		if err != nil {
			s.noteDecodeFailure(ctx, "poll")
			return IngestReport{}, err
		}
		report := s.OnPollResponse(ctx, msg)
		report.Malformed = append(malformed, report.Malformed...)
		return report, nil
	}
}

func (s *Session) noteDecodeFailure(ctx context.Context, section string) {
	s.mu.Lock()
	report := IngestReport{}
	s.noteMalformed(ctx, &report, section, "undecodable frame")
	s.mu.Unlock()
}

func decodeEnvelope(data []byte) (rawEnvelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return rawEnvelope{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return raw, nil
}

func decodeSection[T any](raw json.RawMessage, name string, dst *T, malformed *[]string) {
	if len(raw) == 0 || isJSONNull(raw) {
		return
	}
	var decoded T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		*malformed = append(*malformed, name+": "+err.Error())
		return
	}
	*dst = decoded
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 4 && string(raw) == "null"
}
