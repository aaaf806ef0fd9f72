package client

import (
	"context"
	"errors"
	"testing"
)

func TestMessageKind(t *testing.T) {
	kind, err := MessageKind([]byte(`{"ver":1,"type":"delta"}`))
	if err != nil || kind != MessageDelta {
		t.Fatalf("expected delta, got %q err=%v", kind, err)
	}
	if _, err := MessageKind([]byte(`{"type":"carrier-pigeon"}`)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("unknown type must be malformed, got %v", err)
	}
	if _, err := MessageKind([]byte(`{not json`)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("undecodable frame must be malformed, got %v", err)
	}
}

func TestDecodeDeltaSkipsCorruptSection(t *testing.T) {
	frame := []byte(`{
		"ver": 1,
		"type": "delta",
		"tenant": 1,
		"sequence": 7,
		"characters": [{"id": 1, "tenant": 1, "map": 5, "name": "c1"}],
		"markers": "this is not a list",
		"revisions": [{"map": 5, "revision": 3}]
	}`)

	msg, malformed, err := DecodeDelta(frame)
	if err != nil {
		t.Fatalf("section damage must not fail the envelope: %v", err)
	}
	if len(malformed) != 1 {
		t.Fatalf("expected one skipped section, got %v", malformed)
	}
	if len(msg.Characters) != 1 || msg.Characters[0].ID != 1 {
		t.Fatalf("intact section must decode, got %+v", msg.Characters)
	}
	if len(msg.Markers) != 0 {
		t.Fatalf("corrupt section must stay empty, got %+v", msg.Markers)
	}
	if msg.Sequence != 7 || len(msg.Revisions) != 1 {
		t.Fatalf("unexpected envelope fields %+v", msg)
	}
}

func TestDecodePollPresenceSemantics(t *testing.T) {
	msg, malformed, err := DecodePoll([]byte(`{"ver":1,"type":"poll","tenant":1,"map":5,"revisions":[]}`))
	if err != nil || len(malformed) != 0 {
		t.Fatalf("unexpected decode failure: %v %v", err, malformed)
	}
	if msg.Characters != nil {
		t.Fatalf("absent character section must decode to nil")
	}

	msg, _, err = DecodePoll([]byte(`{"ver":1,"type":"poll","tenant":1,"map":5,"characters":[]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Characters == nil || len(*msg.Characters) != 0 {
		t.Fatalf("present empty list must decode to a non-nil empty slice, got %v", msg.Characters)
	}

	msg, _, err = DecodePoll([]byte(`{"ver":1,"type":"poll","tenant":1,"map":5,"characters":null}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Characters != nil {
		t.Fatalf("explicit null must keep absence semantics")
	}

	msg, malformed, err = DecodePoll([]byte(`{"ver":1,"type":"poll","tenant":1,"map":5,"characters":42}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Characters != nil || len(malformed) != 1 {
		t.Fatalf("corrupt section must be skipped and stay nil, got %v %v", msg.Characters, malformed)
	}
}

func TestIngestRawRoutesAndMergesDamage(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	report, err := s.IngestRaw(ctx, []byte(`{
		"ver": 1,
		"type": "delta",
		"tenant": 1,
		"sequence": 1,
		"characters": [{"id": 1, "tenant": 1, "map": 5}],
		"pings": {"wrong": "shape"}
	}`))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !report.Applied || len(report.Malformed) != 1 {
		t.Fatalf("expected applied report carrying the skipped section, got %+v", report)
	}
	if _, ok := s.Character(1); !ok {
		t.Fatalf("intact section must reconcile")
	}
}

func TestIngestRawRejectsUndecodableFrame(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.IngestRaw(context.Background(), []byte(`garbage`)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected malformed payload error, got %v", err)
	}
	if _, ok := s.ConsumeRefreshHint(); !ok {
		t.Fatalf("an undecodable frame is lost data and must argue for a refresh")
	}
}
