package client

import "fmt"

// RefreshReason records one concrete observation that argued for a fresh
// snapshot: a malformed section that was skipped or a push-sequence gap.
type RefreshReason struct {
	Kind    string
	Section string
}

// RefreshHint is the consumable signal handed to the transport layer. The
// core never fetches anything itself; it only accumulates evidence that the
// local view may be incomplete.
type RefreshHint struct {
	LostEvents  uint64
	TotalEvents uint64
	Reasons     []RefreshReason
}

type refreshPolicy struct {
	totalEvents uint64
	lostEvents  uint64
	pending     bool
	reasons     []RefreshReason
}

const lostEventThresholdPerTenThousand = 1
const refreshReasonLimit = 8

func newRefreshPolicy() *refreshPolicy {
	return &refreshPolicy{reasons: make([]RefreshReason, 0, refreshReasonLimit)}
}

func (p *refreshPolicy) noteEvent() {
	if p == nil {
		return
	}
	if p.totalEvents == ^uint64(0) {
		p.totalEvents = p.totalEvents / 2
		p.lostEvents = p.lostEvents / 2
	}
	p.totalEvents++
}

func (p *refreshPolicy) noteLost(kind, section string) {
	if p == nil {
		return
	}
	p.lostEvents++
	if len(p.reasons) < refreshReasonLimit {
		p.reasons = append(p.reasons, RefreshReason{Kind: kind, Section: section})
	}
	p.evaluate()
}

func (p *refreshPolicy) evaluate() {
	if p == nil || p.pending || p.lostEvents == 0 {
		return
	}
	total := p.totalEvents
	if total == 0 {
		total = 1
	}
	if p.lostEvents*10000 >= total*lostEventThresholdPerTenThousand {
		p.pending = true
	}
}

// consume hands out the pending hint once and resets the counters so a
// healthy stream does not keep re-triggering on old evidence.
func (p *refreshPolicy) consume() (RefreshHint, bool) {
	if p == nil || !p.pending {
		return RefreshHint{}, false
	}
	hint := RefreshHint{
		LostEvents:  p.lostEvents,
		TotalEvents: p.totalEvents,
		Reasons:     append([]RefreshReason(nil), p.reasons...),
	}
	p.pending = false
	p.totalEvents = 0
	p.lostEvents = 0
	if len(p.reasons) > 0 {
		p.reasons = p.reasons[:0]
	}
	return hint, true
}

// Summary renders the hint for transport-side diagnostics.
func (s RefreshHint) Summary() string {
	if s.LostEvents == 0 && s.TotalEvents == 0 {
		return ""
	}
	return fmt.Sprintf("lost_events=%d total_events=%d reasons=%v", s.LostEvents, s.TotalEvents, s.Reasons)
}
