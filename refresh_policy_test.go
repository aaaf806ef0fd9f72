package client

import "testing"

func TestRefreshPolicySchedulesOnLossRatio(t *testing.T) {
	policy := newRefreshPolicy()
	for i := 0; i < 20000; i++ {
		policy.noteEvent()
	}
	policy.noteLost("malformed_payload", "markers")
	if hint, ok := policy.consume(); ok {
		t.Fatalf("unexpected pending hint before threshold, got %+v", hint)
	}

	policy.noteLost("malformed_payload", "markers")
	hint, ok := policy.consume()
	if !ok {
		t.Fatalf("expected refresh hint after exceeding threshold")
	}
	if hint.LostEvents != 2 {
		t.Fatalf("expected lost events 2, got %d", hint.LostEvents)
	}
	if hint.TotalEvents != 20000 {
		t.Fatalf("expected total events 20000, got %d", hint.TotalEvents)
	}
}

func TestRefreshPolicyResetAfterConsume(t *testing.T) {
	policy := newRefreshPolicy()
	policy.noteEvent()
	policy.noteLost("sequence_gap", "7")
	if _, ok := policy.consume(); !ok {
		t.Fatalf("expected refresh hint after lost event")
	}
	if hint, ok := policy.consume(); ok {
		t.Fatalf("expected no hint after reset, got %+v", hint)
	}
	policy.noteEvent()
	policy.noteEvent()
	policy.noteLost("sequence_gap", "9")
	if _, ok := policy.consume(); !ok {
		t.Fatalf("expected policy to trigger again after reset")
	}
}

func TestRefreshHintSummary(t *testing.T) {
	if (RefreshHint{}).Summary() != "" {
		t.Fatalf("empty hint must render empty summary")
	}
	hint := RefreshHint{LostEvents: 1, TotalEvents: 10}
	if hint.Summary() == "" {
		t.Fatalf("expected non-empty summary for populated hint")
	}
}
