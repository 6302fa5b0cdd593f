package analytics

import (
	"math"
	"time"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/domain"
)

// baseTime is a fixed reference point so all test timings are
// deterministic: Monday 2024-06-03 06:00 UTC (09:00 local UTC+3).
var baseTime = time.Date(2024, 6, 3, 6, 0, 0, 0, time.UTC)

// tick returns baseTime advanced by n hours.
func tick(n int) time.Time {
	return baseTime.Add(time.Duration(n) * time.Hour)
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// testVocab is the default state vocabulary used across engine tests.
func testVocab() Vocabulary {
	return Vocabulary{
		Active:        "Active",
		CodeReview:    "Code Review",
		FixRequired:   "Fix Required",
		DevTesting:    "Dev In Testing",
		DevAcceptance: "Dev Acceptance Testing",
		StgTesting:    "Stg In Testing",
		StgAcceptance: "Stg Acceptance Testing",
	}
}

// testClock builds the UTC+3 business calendar the service ships with.
func testClock() *BusinessClock {
	return NewBusinessClock(3, 9, 18, []string{
		"12-31", "01-01", "01-02", "01-03", "01-04", "01-05", "01-06", "01-07", "01-08",
		"02-23", "03-08", "05-01", "05-02", "05-09", "06-12", "11-04",
	})
}

func rev(state, assignedTo, changedBy string, at time.Time) domain.Revision {
	return domain.Revision{State: state, AssignedTo: assignedTo, ChangedBy: changedBy, ChangedDate: at}
}

func tr(from, to string, at time.Time, assignedTo, changedBy string) Transition {
	return Transition{From: from, To: to, At: at, AssignedTo: assignedTo, ChangedBy: changedBy}
}
