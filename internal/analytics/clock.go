package analytics

import (
	"fmt"
	"math"
	"time"
)

// Clock measures elapsed hours between two instants. It is the pluggable
// strategy injected into every analyzer that accumulates time.
type Clock interface {
	// Hours returns elapsed hours in [start, end); end <= start yields 0.
	Hours(start, end time.Time) float64
	// IsWorkingInstant reports whether t falls inside working time.
	IsWorkingInstant(t time.Time) bool
}

// WallClock counts raw wall-clock time with no calendar adjustment.
type WallClock struct{}

func (WallClock) Hours(start, end time.Time) float64 {
	if !end.After(start) { return 0 }
	return end.Sub(start).Hours()
}

func (WallClock) IsWorkingInstant(time.Time) bool { return true }

// BusinessClock counts only business hours: Monday-Friday inside the
// configured local window, excluding the fixed month-day holiday set.
// The local timezone is a fixed UTC offset, not a named zone, so DST
// never shifts historical measurements.
type BusinessClock struct {
	loc       *time.Location
	startHour int
	endHour   int
	holidays  map[string]struct{} // "MM-DD"
}

func NewBusinessClock(utcOffsetHours, startHour, endHour int, holidays []string) *BusinessClock {
	hs := make(map[string]struct{}, len(holidays))
	for _, h := range holidays { hs[h] = struct{}{} }
	name := fmt.Sprintf("UTC%+d", utcOffsetHours)
	return &BusinessClock{
		loc:       time.FixedZone(name, utcOffsetHours*3600),
		startHour: startHour,
		endHour:   endHour,
		holidays:  hs,
	}
}

func (c *BusinessClock) workingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[t.Format("01-02")]
	return !holiday
}

func (c *BusinessClock) IsWorkingInstant(t time.Time) bool {
	lt := t.In(c.loc)
	if !c.workingDay(lt) { return false }
	h := lt.Hour()
	return h >= c.startHour && h < c.endHour
}

// Hours walks the interval one local calendar day at a time, clipping
// [start, end) against each working day's business window.
func (c *BusinessClock) Hours(start, end time.Time) float64 {
	if !end.After(start) { return 0 }
	s := start.In(c.loc)
	e := end.In(c.loc)
	total := 0.0
	cur := s
	for cur.Before(e) {
		dayStart := time.Date(cur.Year(), cur.Month(), cur.Day(), 0, 0, 0, 0, c.loc)
		next := dayStart.AddDate(0, 0, 1)
		if c.workingDay(cur) {
			winStart := dayStart.Add(time.Duration(c.startHour) * time.Hour)
			winEnd := dayStart.Add(time.Duration(c.endHour) * time.Hour)
			lo := cur
			if lo.Before(winStart) { lo = winStart }
			hi := e
			if hi.After(winEnd) { hi = winEnd }
			if hi.After(lo) { total += hi.Sub(lo).Hours() }
		}
		cur = next
	}
	return round4(total)
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
