package recruitment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shift-board-api/pkg/dates"
	"github.com/arnavshah/shift-board-api/pkg/models"
)

var (
	loc1  = &models.Location{ID: "L1", LocationName: "Station East"}
	loc2  = &models.Location{ID: "L2", LocationName: "Station West"}
	duty1 = &models.DutyCode{ID: "D1", Code: "A1", StartTime: "06:00", EndTime: "15:00"}
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
func day(s string) time.Time {
	t, err := dates.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func requirement(id string, required int) models.StaffingRequirement {
	return models.StaffingRequirement{
		ID:                 id,
		LocationID:         "L1",
		DutyCodeID:         "D1",
		RequiredStaffCount: required,
		Location:           loc1,
		DutyCode:           duty1,
	}
}

func confirmed(date, locationID, dutyCodeID string) models.Shift {
	return models.Shift{
		Date:       date,
		LocationID: locationID,
		DutyCodeID: dutyCodeID,
		Status:     models.StatusConfirmed,
	}
}

func TestShortages_EveryDayRequirement(t *testing.T) {
	c := NewCalculator([]models.StaffingRequirement{requirement("r1", 2)}, nil)

	got := c.Shortages(day("2024-06-01"))

	require.Len(t, got, 31)
	assert.Equal(t, "2024-06-01", got[0].Date)
	assert.Equal(t, "2024-07-01", got[30].Date)
	for _, r := range got {
		assert.Equal(t, 2, r.Shortage)
		assert.Equal(t, 0, r.Assigned)
		assert.Equal(t, r.Date+"-L1-D1", r.ID)
		assert.Equal(t, "Station East", r.LocationName)
		assert.Equal(t, "A1", r.DutyCode)
	}
}

func TestShortages_SubtractsConfirmedShifts(t *testing.T) {
	shifts := []models.Shift{
		confirmed("2024-06-01", "L1", "D1"),
		confirmed("2024-06-01", "L1", "D1"),
		confirmed("2024-06-02", "L1", "D1"),
		{Date: "2024-06-03", LocationID: "L1", DutyCodeID: "D1", Status: "仮"},
		confirmed("2024-06-04", "L2", "D1"),
	}
	c := NewCalculator([]models.StaffingRequirement{requirement("r1", 2)}, shifts)

	got := c.Shortages(day("2024-06-01"))

	byDate := map[string]models.Recruitment{}
	for _, r := range got {
		byDate[r.Date] = r
	}
	_, filled := byDate["2024-06-01"]
	assert.False(t, filled, "fully staffed day must not be listed")
	assert.Equal(t, 1, byDate["2024-06-02"].Shortage)
	assert.Equal(t, 1, byDate["2024-06-02"].Assigned)
	assert.Equal(t, 2, byDate["2024-06-03"].Shortage, "unconfirmed shifts do not count")
	assert.Equal(t, 2, byDate["2024-06-04"].Shortage, "other locations do not count")
}

func TestShortages_WeekdayRequirement(t *testing.T) {
	req := requirement("r1", 1)
	req.DayOfWeek = intPtr(3) // Wednesday
	c := NewCalculator([]models.StaffingRequirement{req}, nil)

	got := c.Shortages(day("2024-06-01"))

	require.NotEmpty(t, got)
	for _, r := range got {
		assert.Equal(t, time.Wednesday, day(r.Date).Weekday())
	}
	// June 5, 12, 19, 26
	assert.Len(t, got, 4)
}

func TestShortages_SpecificDateRequirement(t *testing.T) {
	req := requirement("r1", 3)
	req.SpecificDate = strPtr("2024-06-15")
	outside := requirement("r2", 3)
	outside.SpecificDate = strPtr("2024-08-01")
	c := NewCalculator([]models.StaffingRequirement{req, outside}, nil)

	got := c.Shortages(day("2024-06-01"))

	require.Len(t, got, 1)
	assert.Equal(t, "2024-06-15", got[0].Date)
	assert.Equal(t, 3, got[0].Shortage)
}

func TestShortages_UnresolvedReferencesAreFiltered(t *testing.T) {
	noLocation := requirement("r1", 1)
	noLocation.Location = nil
	noDuty := requirement("r2", 1)
	noDuty.DutyCode = nil
	c := NewCalculator([]models.StaffingRequirement{noLocation, noDuty}, nil)

	assert.Empty(t, c.Shortages(day("2024-06-01")))
}

func TestShortages_ZeroRequiredNeverListed(t *testing.T) {
	c := NewCalculator([]models.StaffingRequirement{requirement("r1", 0)}, nil)
	assert.Empty(t, c.Shortages(day("2024-06-01")))
}

func TestShortages_SortedAndRecomputable(t *testing.T) {
	r1 := requirement("r1", 2)
	r2 := models.StaffingRequirement{
		ID: "r2", LocationID: "L2", DutyCodeID: "D1", RequiredStaffCount: 1,
		DayOfWeek: intPtr(int(time.Friday)), Location: loc2, DutyCode: duty1,
	}
	r3 := requirement("r3", 4)
	r3.SpecificDate = strPtr("2024-06-10")
	reqs := []models.StaffingRequirement{r3, r2, r1}
	shifts := []models.Shift{
		confirmed("2024-06-07", "L2", "D1"),
		confirmed("2024-06-10", "L1", "D1"),
		confirmed("2024-06-10", "L1", "D1"),
	}
	c := NewCalculator(reqs, shifts)

	got := c.Shortages(day("2024-06-01"))

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Date, got[i].Date)
	}
	for _, r := range got {
		assert.Positive(t, r.Shortage)
		assigned := 0
		for _, sh := range shifts {
			if sh.Date == r.Date && sh.LocationID == r.LocationID && sh.DutyCodeID == r.DutyCodeID {
				assigned++
			}
		}
		assert.Equal(t, r.Required-assigned, r.Shortage)
	}
}

func TestShortages_CollidingRequirementsEmitSeparately(t *testing.T) {
	c := NewCalculator([]models.StaffingRequirement{requirement("r1", 1), requirement("r2", 2)}, nil)
	c.WindowDays = 0

	got := c.Shortages(day("2024-06-01"))

	require.Len(t, got, 2)
	assert.Equal(t, got[0].ID, got[1].ID)
	assert.Equal(t, 1, got[0].Shortage)
	assert.Equal(t, 2, got[1].Shortage)
}

func TestShortages_Urgency(t *testing.T) {
	c := NewCalculator([]models.StaffingRequirement{requirement("r1", 1)}, nil)
	c.WindowDays = 5

	got := c.Shortages(day("2024-06-01"))

	require.Len(t, got, 6)
	assert.Equal(t, []string{UrgencyToday, UrgencyTomorrow, UrgencyUrgent, UrgencyUrgent, "", ""},
		[]string{got[0].Urgency, got[1].Urgency, got[2].Urgency, got[3].Urgency, got[4].Urgency, got[5].Urgency})
	assert.Equal(t, 4, got[4].DaysUntil)
}

func TestFind(t *testing.T) {
	list := []models.Recruitment{{ID: "a"}, {ID: "b", Shortage: 2}}

	r, ok := Find(list, "b")
	assert.True(t, ok)
	assert.Equal(t, 2, r.Shortage)

	_, ok = Find(list, "c")
	assert.False(t, ok)
}
