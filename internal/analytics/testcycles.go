package analytics

// TestingParams selects which pair of states a testing-cycle run analyzes.
// The analyzer runs once with the dev pair and once with the stg pair.
type TestingParams struct {
	Testing    string
	Acceptance string
}

// ClosedInProgress marks a cycle that was still open when the revision log
// ran out.
const ClosedInProgress = "In Progress"

// TesterTotals accumulates one tester's running totals for one stage.
type TesterTotals struct {
	Hours      float64 `json:"hours"`
	Cycles     int     `json:"cycles"`
	Iterations int     `json:"iterations"`
}

// CycleDetail records one closed testing cycle for diagnostics.
type CycleDetail struct {
	Tester      string   `json:"tester"`
	Periods     []Period `json:"periods"`
	Merged      bool     `json:"merged"`
	ClosedState string   `json:"closedState"`
}

// TestingResult is the per-item output of one testing-cycle run.
type TestingResult struct {
	Totals map[string]*TesterTotals `json:"totals"`
	Cycles []CycleDetail            `json:"cycles,omitempty"`
}

// TestingCycles measures per-tester testing duration, cycle count and
// iteration count over a transition sequence.
//
// A round trip Testing -> Acceptance -> Testing by the same tester is one
// continued cycle, not two: when the item leaves testing for acceptance and
// the lookahead finds the same tester re-entering directly from acceptance,
// the cycle's start pointer moves to the leave instant so hours keep
// accumulating through the acceptance dwell without a second iteration.
func TestingCycles(seq []Transition, p TestingParams, clock Clock) TestingResult {
	res := TestingResult{Totals: map[string]*TesterTotals{}}

	type cycle struct {
		tester       string
		start        Transition
		periods      []Period
		merged       bool
		pendingMerge bool
	}

	var cur *cycle

	closeCycle := func(c *cycle, closedState string, countIteration bool) {
		h := 0.0
		for _, pd := range c.periods { h += clock.Hours(pd.Start, pd.End) }
		tt := res.Totals[c.tester]
		if tt == nil { tt = &TesterTotals{}; res.Totals[c.tester] = tt }
		tt.Hours += h
		tt.Cycles++
		if countIteration { tt.Iterations++ }
		res.Cycles = append(res.Cycles, CycleDetail{
			Tester:      c.tester,
			Periods:     c.periods,
			Merged:      c.merged,
			ClosedState: closedState,
		})
	}

	for i, t := range seq {
		switch {
		case sameState(t.To, p.Testing):
			tester := attributedTester(t)
			if cur != nil && cur.pendingMerge && sameState(t.From, p.Acceptance) && tester == cur.tester {
				// Continuation of the merged cycle; the start pointer already
				// moved when the item left testing.
				cur.pendingMerge = false
				continue
			}
			if cur != nil {
				// Lookahead promised a continuation that did not materialize.
				closeCycle(cur, t.From, true)
			}
			cur = &cycle{tester: tester, start: t}
		case cur != nil && !cur.pendingMerge && sameState(t.From, p.Testing):
			cur.periods = append(cur.periods, Period{Start: cur.start.At, End: t.At})
			if sameState(t.To, p.Acceptance) && continuesSameTester(seq[i+1:], p, cur.tester) {
				cur.pendingMerge = true
				cur.merged = true
				cur.start = t
				continue
			}
			closeCycle(cur, t.To, true)
			cur = nil
		}
	}
	if cur != nil {
		// Still inside testing when the log ran out: a cycle increment and
		// the hours of any closed periods, but no iteration.
		closeCycle(cur, ClosedInProgress, false)
	}
	return res
}

// continuesSameTester reports whether the next entry into the testing state
// comes directly from the acceptance state and is attributed to the same
// tester. The lookahead stops at the first transition that either re-enters
// testing or leaves acceptance for a third state, whichever comes first.
func continuesSameTester(rest []Transition, p TestingParams, tester string) bool {
	for _, t := range rest {
		if sameState(t.To, p.Testing) {
			return sameState(t.From, p.Acceptance) && attributedTester(t) == tester
		}
		if sameState(t.From, p.Acceptance) { return false }
	}
	return false
}
