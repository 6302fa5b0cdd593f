package analytics

import (
	"testing"
	"time"
)

// --- Wall clock ---

func TestWallClock_RawHours(t *testing.T) {
	c := WallClock{}
	got := c.Hours(tick(0), tick(5))
	if !almostEqual(got, 5, 1e-9) {
		t.Errorf("Hours = %v, want 5", got)
	}
}

func TestWallClock_EndBeforeStartIsZero(t *testing.T) {
	c := WallClock{}
	if got := c.Hours(tick(5), tick(0)); got != 0 {
		t.Errorf("Hours = %v, want 0", got)
	}
	if got := c.Hours(tick(3), tick(3)); got != 0 {
		t.Errorf("Hours on equal instants = %v, want 0", got)
	}
}

// --- Business calendar ---

func TestBusinessClock_DayBoundary(t *testing.T) {
	c := testClock()
	// Monday 17:00 local -> Tuesday 10:00 local: one hour Monday evening,
	// one hour Tuesday morning.
	start := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 4, 7, 0, 0, 0, time.UTC)
	got := c.Hours(start, end)
	if !almostEqual(got, 2.0, 1e-9) {
		t.Errorf("Hours = %v, want 2.0", got)
	}
}

func TestBusinessClock_WeekendExcluded(t *testing.T) {
	c := testClock()
	// Friday 2024-06-07 17:30 local -> Monday 2024-06-10 10:00 local:
	// half an hour Friday evening plus one hour Monday morning.
	start := time.Date(2024, 6, 7, 14, 30, 0, 0, time.UTC)
	end := time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)
	got := c.Hours(start, end)
	if !almostEqual(got, 1.5, 1e-9) {
		t.Errorf("Hours across weekend = %v, want 1.5", got)
	}
}

func TestBusinessClock_NewYearBlockYieldsZero(t *testing.T) {
	c := testClock()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	if got := c.Hours(start, end); got != 0 {
		t.Errorf("Hours inside holiday block = %v, want 0", got)
	}
}

func TestBusinessClock_SingleDayClip(t *testing.T) {
	c := testClock()
	// Wednesday 07:00 -> 20:00 local clips to the full 9-hour workday.
	start := time.Date(2024, 6, 5, 4, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 5, 17, 0, 0, 0, time.UTC)
	if got := c.Hours(start, end); !almostEqual(got, 9, 1e-9) {
		t.Errorf("Hours = %v, want 9", got)
	}
}

func TestBusinessClock_IsWorkingInstant(t *testing.T) {
	c := testClock()
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday morning", time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC), true},   // 10:00 local
		{"monday before work", time.Date(2024, 6, 3, 5, 0, 0, 0, time.UTC), false}, // 08:00 local
		{"monday after work", time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC), false}, // 18:00 local, window is half-open
		{"saturday", time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC), false},
		{"holiday may 9", time.Date(2024, 5, 9, 9, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := c.IsWorkingInstant(tc.at); got != tc.want {
			t.Errorf("%s: IsWorkingInstant = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBusinessClock_RoundedToFourDecimals(t *testing.T) {
	c := testClock()
	start := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)
	end := start.Add(1*time.Minute + 1*time.Second)
	got := c.Hours(start, end)
	// 61s = 0.016944... hours, rounded to 0.0169.
	if !almostEqual(got, 0.0169, 1e-9) {
		t.Errorf("Hours = %v, want 0.0169", got)
	}
}
