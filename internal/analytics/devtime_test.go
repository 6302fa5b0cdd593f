package analytics

import "testing"

func TestDevelopmentTime_SingleActivePeriod(t *testing.T) {
	seq := []Transition{
		tr("New", "Active", tick(0), "alice", "alice"),
		tr("Active", "Code Review", tick(4), "alice", "alice"),
	}
	got := DevelopmentTime(seq, testVocab(), testClock())
	if !almostEqual(got.Hours, 4, 1e-9) {
		t.Errorf("Hours = %v, want 4", got.Hours)
	}
	if got.Cycles != 1 {
		t.Errorf("Cycles = %d, want 1", got.Cycles)
	}
	if got.HandedOff {
		t.Error("HandedOff = true without a dev-acceptance entry")
	}
}

// Counting stops at the first entry into dev acceptance: spans from later
// rework are excluded from the metric.
func TestDevelopmentTime_StopsAtFirstHandoff(t *testing.T) {
	seq := []Transition{
		tr("New", "Active", tick(0), "alice", "alice"),
		tr("Active", "Code Review", tick(2), "alice", "alice"),
		tr("Code Review", "Fix Required", tick(3), "alice", "bob"),
		tr("Fix Required", "Active", tick(4), "alice", "alice"),
		tr("Active", "Dev Acceptance Testing", tick(6), "alice", "alice"),
		tr("Dev Acceptance Testing", "Fix Required", tick(7), "alice", "carol"),
		tr("Fix Required", "Active", tick(8), "alice", "alice"),
		tr("Active", "Dev Acceptance Testing", tick(30), "alice", "alice"),
	}
	got := DevelopmentTime(seq, testVocab(), testClock())
	// First two active spans only: [0h,2h) + [4h,6h) = 4 business hours.
	if !almostEqual(got.Hours, 4, 1e-9) {
		t.Errorf("Hours = %v, want 4 (later rework must not count)", got.Hours)
	}
	if got.Cycles != 2 {
		t.Errorf("Cycles = %d, want 2", got.Cycles)
	}
	if !got.HandedOff {
		t.Error("HandedOff = false, want true")
	}
}

func TestDevelopmentTime_HandoffClosesOpenPeriod(t *testing.T) {
	seq := []Transition{
		tr("New", "Active", tick(0), "alice", "alice"),
		tr("Active", "Dev Acceptance Testing", tick(3), "alice", "alice"),
	}
	got := DevelopmentTime(seq, testVocab(), testClock())
	if !almostEqual(got.Hours, 3, 1e-9) || got.Cycles != 1 {
		t.Errorf("Hours = %v Cycles = %d, want 3 and 1", got.Hours, got.Cycles)
	}
	if !got.HandedOff {
		t.Error("HandedOff = false, want true")
	}
}

func TestDevelopmentTime_OpenPeriodReportedButNotCounted(t *testing.T) {
	seq := []Transition{
		tr("New", "Active", tick(0), "alice", "alice"),
	}
	got := DevelopmentTime(seq, testVocab(), testClock())
	if got.Hours != 0 || got.Cycles != 0 {
		t.Errorf("open period must contribute nothing: %+v", got)
	}
	if got.OpenPeriod == nil || !got.OpenPeriod.Open || !got.OpenPeriod.Start.Equal(tick(0)) {
		t.Errorf("OpenPeriod = %+v, want open diagnostic at start", got.OpenPeriod)
	}
}

func TestDevelopmentTime_EmptySequence(t *testing.T) {
	got := DevelopmentTime(nil, testVocab(), testClock())
	if got.Hours != 0 || got.Cycles != 0 || got.HandedOff || got.OpenPeriod != nil {
		t.Errorf("zero-value result expected, got %+v", got)
	}
}
