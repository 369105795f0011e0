// Package dates holds the calendar-day helpers shared by the derivations.
// Dates cross package boundaries as ISO strings (yyyy-MM-dd); weekdays use
// time.Weekday (0=Sunday) except where a Monday-first index is asked for.
package dates

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	// DayLayout is the ISO calendar-day layout used for every stored date
	DayLayout = "2006-01-02"
	// MonthLayout is the year-month layout
	MonthLayout = "2006-01"
)

var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Day truncates t to midnight in its own location
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Format renders t as yyyy-MM-dd
func Format(t time.Time) string {
	return t.Format(DayLayout)
}

// Parse parses a yyyy-MM-dd string as a UTC calendar day
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ParseMonth parses yyyy-MM into the first day of that month (UTC)
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}

// MonthBounds returns the first and last day of the month containing t
func MonthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// Window returns the calendar days today, today+1, ..., today+days
func Window(today time.Time, days int) []time.Time {
	if days < 0 {
		days = 0
	}
	start := civil(today)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Count:   days + 1,
	})
	if err != nil {
		// DAILY with a positive count is always a valid rule
		panic(err)
	}
	return rule.All()
}

// MonthDays returns every day of the month containing t
func MonthDays(t time.Time) []time.Time {
	first, last := MonthBounds(t)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: first,
		Until:   last,
	})
	if err != nil {
		panic(err)
	}
	return rule.All()
}

// WeekdaysInMonth returns the days of t's month that fall on weekday
func WeekdaysInMonth(t time.Time, weekday time.Weekday) []time.Time {
	first, last := MonthBounds(t)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   first,
		Until:     last,
		Byweekday: []rrule.Weekday{rruleWeekdays[weekday]},
	})
	if err != nil {
		panic(err)
	}
	return rule.All()
}

// DaysBetween is the number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}

// MondayFirst converts a Sunday-based weekday to a Monday-first column (Mon=0..Sun=6)
func MondayFirst(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// FromMondayFirst converts a Monday-first column back to a time.Weekday
func FromMondayFirst(i int) (time.Weekday, error) {
	if i < 0 || i > 6 {
		return 0, fmt.Errorf("monday-first index %d out of range", i)
	}
	return time.Weekday((i + 1) % 7), nil
}

// civil re-anchors t's calendar day at UTC midnight so day arithmetic is DST free
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
