package analytics

import (
	"strings"
	"time"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/domain"
)

// Transition is a derived state-change event between two consecutive
// revisions of one work item. Revisions that change only the assignee or
// other fields produce no transition.
type Transition struct {
	From       string    `json:"from"`
	To         string    `json:"to"`
	At         time.Time `json:"at"`
	AssignedTo string    `json:"assignedTo,omitempty"`
	ChangedBy  string    `json:"changedBy,omitempty"`
}

// ExtractTransitions converts an ordered revision log into its sequence of
// state changes. The first revision has no prior state and never produces
// an event.
func ExtractTransitions(revs []domain.Revision) []Transition {
	var out []Transition
	for i := 1; i < len(revs); i++ {
		if revs[i].State == revs[i-1].State { continue }
		out = append(out, Transition{
			From:       revs[i-1].State,
			To:         revs[i].State,
			At:         revs[i].ChangedDate,
			AssignedTo: revs[i].AssignedTo,
			ChangedBy:  revs[i].ChangedBy,
		})
	}
	return out
}

// Vocabulary names the lifecycle states the analyzers react to. It is
// injected configuration; nothing in the engine hard-codes state names.
type Vocabulary struct {
	Active        string
	CodeReview    string
	FixRequired   string
	DevTesting    string
	DevAcceptance string
	StgTesting    string
	StgAcceptance string
}

// canonicalState folds case and treats underscores as spaces, so
// "STG_Acceptance Testing" and "Stg Acceptance Testing" name the same
// stage. Transition extraction compares raw strings; only the analyzers
// match canonically.
func canonicalState(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func sameState(a, b string) bool { return canonicalState(a) == canonicalState(b) }

// attributedTester resolves who a transition is attributed to. The chain
// can credit an automation actor when a workflow changes state on someone's
// behalf; that is a known attribution caveat, kept as is.
func attributedTester(t Transition) string {
	if strings.TrimSpace(t.ChangedBy) != "" { return t.ChangedBy }
	if strings.TrimSpace(t.AssignedTo) != "" { return t.AssignedTo }
	return "Unknown"
}
