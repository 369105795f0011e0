package recruitment

import (
	"fmt"
	"sort"
	"time"

	"github.com/arnavshah/shift-board-api/pkg/dates"
	"github.com/arnavshah/shift-board-api/pkg/models"
)

// DefaultWindowDays is how far past today shortages are looked for
const DefaultWindowDays = 30

// Urgency labels
const (
	UrgencyToday    = "today"
	UrgencyTomorrow = "tomorrow"
	UrgencyUrgent   = "urgent"
)

type slotKey struct {
	date       string
	locationID string
	dutyCodeID string
}

// Calculator matches staffing requirements against confirmed shifts
type Calculator struct {
	Requirements []models.StaffingRequirement
	WindowDays   int

	assigned map[slotKey]int
}

// NewCalculator creates a calculator over the given requirements and shifts.
// Shifts whose status is not confirmed are ignored.
func NewCalculator(requirements []models.StaffingRequirement, shifts []models.Shift) *Calculator {
	c := &Calculator{
		Requirements: requirements,
		WindowDays:   DefaultWindowDays,
	}
	c.Prefill(shifts)
	return c
}

// Prefill rebuilds the assigned count map from scratch
func (c *Calculator) Prefill(shifts []models.Shift) {
	c.assigned = make(map[slotKey]int, len(shifts))
	for _, sh := range shifts {
		if sh.Status != models.StatusConfirmed {
			continue
		}
		c.assigned[slotKey{sh.Date, sh.LocationID, sh.DutyCodeID}]++
	}
}

// Assigned returns how many confirmed shifts cover date/location/duty code
func (c *Calculator) Assigned(date, locationID, dutyCodeID string) int {
	return c.assigned[slotKey{date, locationID, dutyCodeID}]
}

// Applies reports whether a requirement is in force on day
func Applies(req models.StaffingRequirement, day time.Time) bool {
	if req.DayOfWeek != nil && time.Weekday(*req.DayOfWeek) != day.Weekday() {
		return false
	}
	if req.SpecificDate != nil && *req.SpecificDate != dates.Format(day) {
		return false
	}
	return true
}

// Shortages lists every positive shortage from today through today+WindowDays,
// sorted by date. Requirements whose location or duty code did not resolve are skipped.
func (c *Calculator) Shortages(today time.Time) []models.Recruitment {
	var out []models.Recruitment

	for _, day := range dates.Window(today, c.WindowDays) {
		dateStr := dates.Format(day)
		for _, req := range c.Requirements {
			if !Applies(req, day) {
				continue
			}

			assigned := c.Assigned(dateStr, req.LocationID, req.DutyCodeID)
			shortage := req.RequiredStaffCount - assigned
			if shortage <= 0 || req.Location == nil || req.DutyCode == nil {
				continue
			}

			daysUntil := dates.DaysBetween(today, day)
			out = append(out, models.Recruitment{
				ID:           ID(dateStr, req.LocationID, req.DutyCodeID),
				Date:         dateStr,
				LocationID:   req.LocationID,
				LocationName: req.Location.LocationName,
				DutyCodeID:   req.DutyCodeID,
				DutyCode:     req.DutyCode.Code,
				StartTime:    req.DutyCode.StartTime,
				EndTime:      req.DutyCode.EndTime,
				Required:     req.RequiredStaffCount,
				Assigned:     assigned,
				Shortage:     shortage,
				DaysUntil:    daysUntil,
				Urgency:      Urgency(daysUntil),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// ID is the identity key of a recruitment
func ID(date, locationID, dutyCodeID string) string {
	return fmt.Sprintf("%s-%s-%s", date, locationID, dutyCodeID)
}

// Urgency labels a recruitment by how soon it starts
func Urgency(daysUntil int) string {
	switch {
	case daysUntil <= 0:
		return UrgencyToday
	case daysUntil == 1:
		return UrgencyTomorrow
	case daysUntil <= 3:
		return UrgencyUrgent
	}
	return ""
}

// Find returns the recruitment with the given id
func Find(list []models.Recruitment, id string) (models.Recruitment, bool) {
	for _, r := range list {
		if r.ID == id {
			return r, true
		}
	}
	return models.Recruitment{}, false
}
