package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arnavshah/shift-board-api/pkg/database"
	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

func openDB(t *testing.T, withEntries bool) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, withEntries))
	return db
}

func newStore(t *testing.T) (*store.Store, *gorm.DB) {
	db := openDB(t, true)
	return store.New(db, zap.NewNop()), db
}

func ptr[T any](v T) *T { return &v }

func request(staff, date, symbol string) models.ShiftRequest {
	return models.ShiftRequest{StaffID: staff, Date: date, RequestType: symbol, YearMonth: date[:7]}
}

func TestUpsertShiftRequests_ReplacesByStaffAndDate(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)

	require.NoError(t, st.UpsertShiftRequests(ctx, []models.ShiftRequest{request("s1", "2025-03-10", "◯")}))

	second := request("s1", "2025-03-10", "×")
	second.Note = ptr("dentist")
	require.NoError(t, st.UpsertShiftRequests(ctx, []models.ShiftRequest{second}))

	got, err := st.ListShiftRequests(ctx, "s1", "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "×", got[0].RequestType)
	require.NotNil(t, got[0].Note)
	assert.Equal(t, "dentist", *got[0].Note)
}

func TestUpsertShiftRequests_RejectsInvalidSymbol(t *testing.T) {
	st, _ := newStore(t)

	err := st.UpsertShiftRequests(context.Background(), []models.ShiftRequest{request("s1", "2025-03-10", "?")})
	require.Error(t, err)
	assert.True(t, store.IsInvalid(err))
}

func TestDeleteShiftRequest_ScopedToStaff(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)

	require.NoError(t, st.UpsertShiftRequests(ctx, []models.ShiftRequest{
		request("s1", "2025-03-10", "◯"),
		request("s2", "2025-03-10", "△"),
	}))

	require.NoError(t, st.DeleteShiftRequest(ctx, "s1", "2025-03-10"))
	assert.ErrorIs(t, st.DeleteShiftRequest(ctx, "s1", "2025-03-10"), store.ErrNotFound)

	other, err := st.ListShiftRequests(ctx, "s2", "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestListConfirmedShifts(t *testing.T) {
	ctx := context.Background()
	st, db := newStore(t)

	loc := &models.Location{LocationName: "本店", Code: "S01"}
	require.NoError(t, st.CreateLocation(ctx, loc))
	dc := &models.DutyCode{Code: "D1", StartTime: "09:00", EndTime: "17:00"}
	require.NoError(t, st.CreateDutyCode(ctx, dc))

	require.NoError(t, st.CreateShifts(ctx, []models.Shift{
		{StaffID: "s1", LocationID: loc.ID, DutyCodeID: dc.ID, Date: "2025-03-10", Status: models.StatusConfirmed},
		{StaffID: "s1", LocationID: "missing", DutyCodeID: dc.ID, Date: "2025-03-11", Status: models.StatusConfirmed},
		{StaffID: "s1", LocationID: loc.ID, DutyCodeID: dc.ID, Date: "2025-03-12", Status: "draft"},
		{StaffID: "s2", LocationID: loc.ID, DutyCodeID: dc.ID, Date: "2025-03-10", Status: models.StatusConfirmed},
		{StaffID: "s1", LocationID: loc.ID, DutyCodeID: dc.ID, Date: "2025-04-01", Status: models.StatusConfirmed},
	}))

	// Bypass validation to simulate a row written by another client
	require.NoError(t, db.Exec(
		"INSERT INTO shifts (id, staff_id, location_id, duty_code_id, date, status) VALUES (?, ?, ?, ?, ?, ?)",
		"bad-row", "s1", loc.ID, dc.ID, "2025-03-1x", models.StatusConfirmed,
	).Error)

	got, err := st.ListConfirmedShifts(ctx, "2025-03-01", "2025-03-31", "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "2025-03-10", got[0].Date)
	require.NotNil(t, got[0].Location)
	assert.Equal(t, "本店", got[0].Location.LocationName)
	require.NotNil(t, got[0].DutyCode)
	assert.Equal(t, "09:00", got[0].DutyCode.StartTime)

	assert.Equal(t, "2025-03-11", got[1].Date)
	assert.Nil(t, got[1].Location, "unresolved join stays nil")

	all, err := st.ListConfirmedShifts(ctx, "2025-03-01", "2025-03-31", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreateRequirements_RejectsBothQualifiers(t *testing.T) {
	st, _ := newStore(t)

	err := st.CreateRequirements(context.Background(), []models.StaffingRequirement{{
		LocationID: "l", DutyCodeID: "d", RequiredStaffCount: 1,
		DayOfWeek: ptr(1), SpecificDate: ptr("2025-03-10"),
	}})
	require.Error(t, err)
	assert.True(t, store.IsInvalid(err))
}

func TestListRequirements_DropsMalformedRows(t *testing.T) {
	ctx := context.Background()
	st, db := newStore(t)

	require.NoError(t, st.CreateRequirements(ctx, []models.StaffingRequirement{
		{LocationID: "l", DutyCodeID: "d", RequiredStaffCount: 2},
		{LocationID: "l", DutyCodeID: "d", RequiredStaffCount: 1, DayOfWeek: ptr(3)},
	}))
	require.NoError(t, db.Exec(
		"INSERT INTO location_requirements (id, location_id, duty_code_id, required_staff_count, day_of_week, specific_date) VALUES (?, ?, ?, ?, ?, ?)",
		"both", "l", "d", 1, 2, "2025-03-10",
	).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO location_requirements (id, location_id, duty_code_id, required_staff_count, day_of_week) VALUES (?, ?, ?, ?, ?)",
		"range", "l", "d", 1, 9,
	).Error)

	got, err := st.ListRequirements(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, r := range got {
		assert.NotEqual(t, "both", r.ID)
		assert.NotEqual(t, "range", r.ID)
	}
}

func TestDeleteRequirement_NotFound(t *testing.T) {
	st, _ := newStore(t)
	assert.ErrorIs(t, st.DeleteRequirement(context.Background(), "nope"), store.ErrNotFound)
}

func TestInsertEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("table present", func(t *testing.T) {
		st, db := newStore(t)
		e := &models.ShiftEntry{StaffID: "s1", Date: "2025-03-10", LocationID: "l", DutyCodeID: "d", Status: models.EntryStatusPending}
		require.NoError(t, st.InsertEntry(ctx, e))
		assert.NotEmpty(t, e.ID)

		var n int64
		require.NoError(t, db.Model(&models.ShiftEntry{}).Count(&n).Error)
		assert.EqualValues(t, 1, n)
	})

	t.Run("table missing", func(t *testing.T) {
		st := store.New(openDB(t, false), zap.NewNop())
		err := st.InsertEntry(ctx, &models.ShiftEntry{StaffID: "s1", Date: "2025-03-10", LocationID: "l", Status: models.EntryStatusPending})
		assert.Error(t, err)
	})
}

func TestFindStaffByCode(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)

	_, err := st.FindStaffByCode(ctx, "s001")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.CreateStaff(ctx, &models.Staff{Code: "s001", Name: "Sato", PasswordHash: "x"}))
	got, err := st.FindStaffByCode(ctx, "s001")
	require.NoError(t, err)
	assert.Equal(t, "Sato", got.Name)
	assert.NotEmpty(t, got.ID)

	err = st.CreateStaff(ctx, &models.Staff{Code: "s001", Name: "Suzuki", PasswordHash: "y"})
	assert.ErrorIs(t, err, store.ErrConflict)
}
