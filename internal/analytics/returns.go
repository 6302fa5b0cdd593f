package analytics

import "time"

// Stages a fix-required regression can originate from.
const (
	StageCodeReview = "Code Review"
	StageDevTesting = "Dev Testing"
	StageStgTesting = "Stg Testing"
)

// Return is one fix-required transition tagged with the stage it regressed
// from. At and By are carried for diagnostics.
type Return struct {
	Stage string    `json:"stage"`
	At    time.Time `json:"at"`
	By    string    `json:"by,omitempty"`
}

// ClassifyReturns tags every transition into the fix-required state by its
// source stage. Transitions from unrecognized states are not regressions
// and are not counted.
func ClassifyReturns(seq []Transition, v Vocabulary) []Return {
	var out []Return
	for _, t := range seq {
		if !sameState(t.To, v.FixRequired) { continue }
		var stage string
		switch {
		case sameState(t.From, v.CodeReview):
			stage = StageCodeReview
		case sameState(t.From, v.DevTesting) || sameState(t.From, v.DevAcceptance):
			stage = StageDevTesting
		case sameState(t.From, v.StgTesting) || sameState(t.From, v.StgAcceptance):
			stage = StageStgTesting
		default:
			continue
		}
		out = append(out, Return{Stage: stage, At: t.At, By: t.ChangedBy})
	}
	return out
}
