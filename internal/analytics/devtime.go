package analytics

import "time"

// Period is a half-open interval [Start, End) of attributed work. Open
// marks a period that had not ended when the revision log ran out.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitempty"`
	Open  bool      `json:"open,omitempty"`
}

// DevTimeResult is the output of the development-time state machine for
// one work item.
type DevTimeResult struct {
	Hours     float64   `json:"hours"`
	Cycles    int       `json:"cycles"`
	HandedOff bool      `json:"handedOff"`
	Periods   []Period  `json:"periods,omitempty"`
	// OpenPeriod reports an active period left unclosed at the end of the
	// sequence. It contributes no hours; diagnostics only.
	OpenPeriod *Period `json:"openPeriod,omitempty"`
}

// DevelopmentTime measures active development duration and cycle count
// over a transition sequence. Counting stops at the first entry into the
// dev-acceptance state: later rework spans are deliberately excluded from
// this metric (the single-handoff rule).
func DevelopmentTime(seq []Transition, v Vocabulary, clock Clock) DevTimeResult {
	var res DevTimeResult
	var openStart *time.Time
	for _, t := range seq {
		if openStart != nil && sameState(t.From, v.Active) {
			p := Period{Start: *openStart, End: t.At}
			res.Periods = append(res.Periods, p)
			res.Hours += clock.Hours(p.Start, p.End)
			res.Cycles++
			openStart = nil
		}
		if sameState(t.To, v.DevAcceptance) {
			res.HandedOff = true
			return res
		}
		if openStart == nil && sameState(t.To, v.Active) {
			at := t.At
			openStart = &at
		}
	}
	if openStart != nil {
		res.OpenPeriod = &Period{Start: *openStart, Open: true}
	}
	return res
}
