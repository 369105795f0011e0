// Package preference folds a staff member's per-day requests into the views
// the request screen needs: a per-weekday aggregate and a Monday-first month grid.
package preference

import (
	"time"

	"github.com/arnavshah/shift-board-api/pkg/dates"
	"github.com/arnavshah/shift-board-api/pkg/models"
)

// Symbol is a preference marker for one calendar day
type Symbol string

// Preference symbols
const (
	Available   Symbol = "◯"
	PreferOff   Symbol = "△"
	Unavailable Symbol = "×"

	// availableAlias is the plain circle some clients send for Available
	availableAlias = "○"
)

// Symbols lists the accepted symbols in display order
var Symbols = []Symbol{Available, PreferOff, Unavailable}

// Normalize maps raw request text to a Symbol
func Normalize(raw string) (Symbol, bool) {
	switch raw {
	case string(Available), availableAlias:
		return Available, true
	case string(PreferOff):
		return PreferOff, true
	case string(Unavailable):
		return Unavailable, true
	}
	return "", false
}

// IndexByDate maps each request's date to its symbol. Unknown symbols are left out.
func IndexByDate(requests []models.ShiftRequest) map[string]Symbol {
	out := make(map[string]Symbol, len(requests))
	for _, r := range requests {
		if sym, ok := Normalize(r.RequestType); ok {
			out[r.Date] = sym
		}
	}
	return out
}

// WeekdayAggregate returns the symbol shared by every date in month falling on
// weekday. It returns false when the month has no such date, when any date has
// no request, or when the dates disagree.
func WeekdayAggregate(month time.Time, weekday time.Weekday, byDate map[string]Symbol) (Symbol, bool) {
	days := dates.WeekdaysInMonth(month, weekday)
	if len(days) == 0 {
		return "", false
	}

	var first Symbol
	for i, d := range days {
		sym, ok := byDate[dates.Format(d)]
		if !ok {
			return "", false
		}
		if i == 0 {
			first = sym
			continue
		}
		if sym != first {
			return "", false
		}
	}
	return first, true
}

// Day is one cell of a month calendar
type Day struct {
	Date    string `json:"date"`
	Weekday int    `json:"weekday"`
	Symbol  Symbol `json:"symbol,omitempty"`
	Note    string `json:"note,omitempty"`
	Today   bool   `json:"today"`
}

// Calendar is a month laid out in Monday-first weeks. Nil cells pad the first
// and last week.
type Calendar struct {
	Month    string   `json:"month"`
	Weekdays []int    `json:"weekdays"`
	Weeks    [][]*Day `json:"weeks"`
}

// BuildCalendar lays out month with the given requests marked
func BuildCalendar(month, today time.Time, requests []models.ShiftRequest) Calendar {
	byDate := IndexByDate(requests)
	notes := make(map[string]string, len(requests))
	for _, r := range requests {
		if r.Note != nil {
			notes[r.Date] = *r.Note
		}
	}

	days := dates.MonthDays(month)
	todayStr := dates.Format(today)

	cells := make([]*Day, dates.MondayFirst(days[0].Weekday()))
	for _, d := range days {
		ds := dates.Format(d)
		cells = append(cells, &Day{
			Date:    ds,
			Weekday: int(d.Weekday()),
			Symbol:  byDate[ds],
			Note:    notes[ds],
			Today:   ds == todayStr,
		})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}

	cal := Calendar{Month: days[0].Format(dates.MonthLayout)}
	for i := 0; i < 7; i++ {
		w, _ := dates.FromMondayFirst(i)
		cal.Weekdays = append(cal.Weekdays, int(w))
	}
	for i := 0; i < len(cells); i += 7 {
		cal.Weeks = append(cal.Weeks, cells[i:i+7])
	}
	return cal
}
