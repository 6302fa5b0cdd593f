package analytics

import "testing"

func devParams() TestingParams {
	v := testVocab()
	return TestingParams{Testing: v.DevTesting, Acceptance: v.DevAcceptance}
}

func TestTestingCycles_SingleCycle(t *testing.T) {
	seq := []Transition{
		tr("Active", "Dev In Testing", tick(0), "tina", "tina"),
		tr("Dev In Testing", "Released", tick(3), "tina", "tina"),
	}
	got := TestingCycles(seq, devParams(), testClock())
	tt := got.Totals["tina"]
	if tt == nil {
		t.Fatalf("no totals for tina: %+v", got.Totals)
	}
	if !almostEqual(tt.Hours, 3, 1e-9) || tt.Cycles != 1 || tt.Iterations != 1 {
		t.Errorf("totals = %+v, want 3h/1/1", tt)
	}
	if len(got.Cycles) != 1 || got.Cycles[0].Merged || got.Cycles[0].ClosedState != "Released" {
		t.Errorf("cycle detail = %+v", got.Cycles)
	}
}

// A round trip through acceptance by the same tester continues the cycle:
// one iteration, hours accumulated across both testing spans and the
// acceptance dwell between them.
func TestTestingCycles_MergeThroughAcceptance(t *testing.T) {
	seq := []Transition{
		tr("Active", "Dev In Testing", tick(0), "tina", "tina"),
		tr("Dev In Testing", "Dev Acceptance Testing", tick(2), "tina", "tina"),
		tr("Dev Acceptance Testing", "Dev In Testing", tick(3), "tina", "tina"),
		tr("Dev In Testing", "Released", tick(5), "tina", "tina"),
	}
	got := TestingCycles(seq, devParams(), testClock())
	tt := got.Totals["tina"]
	if tt == nil {
		t.Fatalf("no totals for tina")
	}
	if tt.Cycles != 1 || tt.Iterations != 1 {
		t.Errorf("cycles/iterations = %d/%d, want 1/1", tt.Cycles, tt.Iterations)
	}
	// [0h,2h) plus the continued span [2h,5h): 5 business hours in total.
	if !almostEqual(tt.Hours, 5, 1e-9) {
		t.Errorf("Hours = %v, want 5", tt.Hours)
	}
	if len(got.Cycles) != 1 || !got.Cycles[0].Merged {
		t.Fatalf("expected one merged cycle, got %+v", got.Cycles)
	}
	if len(got.Cycles[0].Periods) != 2 {
		t.Errorf("periods = %+v, want 2", got.Cycles[0].Periods)
	}
}

func TestTestingCycles_NoMergeForDifferentTester(t *testing.T) {
	seq := []Transition{
		tr("Active", "Dev In Testing", tick(0), "tina", "tina"),
		tr("Dev In Testing", "Dev Acceptance Testing", tick(2), "tina", "tina"),
		tr("Dev Acceptance Testing", "Dev In Testing", tick(3), "tom", "tom"),
		tr("Dev In Testing", "Released", tick(5), "tom", "tom"),
	}
	got := TestingCycles(seq, devParams(), testClock())
	if got.Totals["tina"] == nil || got.Totals["tom"] == nil {
		t.Fatalf("expected totals for both testers: %+v", got.Totals)
	}
	if got.Totals["tina"].Iterations != 1 || got.Totals["tom"].Iterations != 1 {
		t.Errorf("each tester should close one iteration: %+v", got.Totals)
	}
	if len(got.Cycles) != 2 {
		t.Fatalf("cycles = %+v, want 2", got.Cycles)
	}
	for _, c := range got.Cycles {
		if c.Merged { t.Errorf("cycle %+v should not be merged", c) }
	}
}

// The continuation lookahead stops as soon as acceptance is left for a
// third state; a later re-entry into testing does not merge.
func TestTestingCycles_AcceptanceExitBreaksMerge(t *testing.T) {
	seq := []Transition{
		tr("Active", "Dev In Testing", tick(0), "tina", "tina"),
		tr("Dev In Testing", "Dev Acceptance Testing", tick(2), "tina", "tina"),
		tr("Dev Acceptance Testing", "Fix Required", tick(3), "tina", "bob"),
		tr("Fix Required", "Dev In Testing", tick(4), "tina", "tina"),
		tr("Dev In Testing", "Released", tick(5), "tina", "tina"),
	}
	got := TestingCycles(seq, devParams(), testClock())
	tt := got.Totals["tina"]
	if tt == nil || tt.Cycles != 2 || tt.Iterations != 2 {
		t.Fatalf("totals = %+v, want two separate cycles", tt)
	}
	if len(got.Cycles) != 2 || got.Cycles[0].Merged || got.Cycles[1].Merged {
		t.Errorf("cycles = %+v, want two unmerged", got.Cycles)
	}
}

func TestTestingCycles_InProgressCloseSkipsIteration(t *testing.T) {
	seq := []Transition{
		tr("Active", "Dev In Testing", tick(0), "tina", "tina"),
	}
	got := TestingCycles(seq, devParams(), testClock())
	tt := got.Totals["tina"]
	if tt == nil || tt.Cycles != 1 || tt.Iterations != 0 {
		t.Fatalf("totals = %+v, want one cycle and zero iterations", tt)
	}
	if tt.Hours != 0 {
		t.Errorf("an unclosed span must contribute no hours, got %v", tt.Hours)
	}
	if len(got.Cycles) != 1 || got.Cycles[0].ClosedState != ClosedInProgress {
		t.Errorf("cycle detail = %+v, want closed as %q", got.Cycles, ClosedInProgress)
	}
}

func TestTestingCycles_AttributionFallbackChain(t *testing.T) {
	seq := []Transition{
		tr("Active", "Dev In Testing", tick(0), "tina", ""),
		tr("Dev In Testing", "Released", tick(1), "tina", ""),
	}
	got := TestingCycles(seq, devParams(), testClock())
	if got.Totals["tina"] == nil {
		t.Fatalf("expected fallback to assignedTo, got %+v", got.Totals)
	}

	seq = []Transition{
		tr("Active", "Dev In Testing", tick(0), "", ""),
		tr("Dev In Testing", "Released", tick(1), "", ""),
	}
	got = TestingCycles(seq, devParams(), testClock())
	if got.Totals["Unknown"] == nil {
		t.Fatalf("expected fallback to Unknown, got %+v", got.Totals)
	}
}

func TestTestingCycles_StageIsolation(t *testing.T) {
	// Stg transitions must be invisible to a dev-stage run.
	seq := []Transition{
		tr("Active", "Stg In Testing", tick(0), "tina", "tina"),
		tr("Stg In Testing", "Released", tick(2), "tina", "tina"),
	}
	got := TestingCycles(seq, devParams(), testClock())
	if len(got.Totals) != 0 {
		t.Fatalf("dev run must ignore stg states: %+v", got.Totals)
	}
}
