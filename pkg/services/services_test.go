package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/pkg/entry"
	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/preference"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

// mockStore implements store.ShiftBoardStore
type mockStore struct {
	mu           sync.Mutex
	shifts       []models.Shift
	requirements []models.StaffingRequirement
	requests     map[string]models.ShiftRequest // staff|date
	entries      []*models.ShiftEntry

	shiftsErr  error
	reqsErr    error
	upsertErr  error
	entryErr   error
	shiftCalls []string
}

func newMockStore() *mockStore {
	return &mockStore{requests: map[string]models.ShiftRequest{}}
}

func (m *mockStore) ListConfirmedShifts(ctx context.Context, from, to, staffID string) ([]models.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shiftCalls = append(m.shiftCalls, from+".."+to+"@"+staffID)
	if m.shiftsErr != nil {
		return nil, m.shiftsErr
	}
	var out []models.Shift
	for _, sh := range m.shifts {
		if sh.Date >= from && sh.Date <= to && (staffID == "" || sh.StaffID == staffID) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (m *mockStore) ListRequirements(ctx context.Context) ([]models.StaffingRequirement, error) {
	if m.reqsErr != nil {
		return nil, m.reqsErr
	}
	return m.requirements, nil
}

func (m *mockStore) ListShiftRequests(ctx context.Context, staffID, from, to string) ([]models.ShiftRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ShiftRequest
	for _, r := range m.requests {
		if r.StaffID == staffID && r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) UpsertShiftRequests(ctx context.Context, reqs []models.ShiftRequest) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range reqs {
		m.requests[r.StaffID+"|"+r.Date] = r
	}
	return nil
}

func (m *mockStore) DeleteShiftRequest(ctx context.Context, staffID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := staffID + "|" + date
	if _, ok := m.requests[key]; !ok {
		return store.ErrNotFound
	}
	delete(m.requests, key)
	return nil
}

func (m *mockStore) InsertEntry(ctx context.Context, e *models.ShiftEntry) error {
	if m.entryErr != nil {
		return m.entryErr
	}
	m.entries = append(m.entries, e)
	return nil
}

var (
	caller = models.Identity{StaffID: "staff-1"}
	june1  = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	june   = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func newService(st *mockStore) *Service {
	return New(st, entry.NewRegistry(st, zap.NewNop()), zap.NewNop(), WithClock(func() time.Time { return june1 }))
}

func everyDay(required int) models.StaffingRequirement {
	return models.StaffingRequirement{
		ID: "r1", LocationID: "L1", DutyCodeID: "D1", RequiredStaffCount: required,
		Location: &models.Location{ID: "L1", LocationName: "East"},
		DutyCode: &models.DutyCode{ID: "D1", Code: "A1", StartTime: "06:00", EndTime: "15:00"},
	}
}

func TestRecruitments_FullWindow(t *testing.T) {
	st := newMockStore()
	st.requirements = []models.StaffingRequirement{everyDay(2)}
	svc := newService(st)

	list, err := svc.Recruitments(context.Background(), caller)
	require.NoError(t, err)

	require.Len(t, list, 31)
	assert.Equal(t, "2024-06-01", list[0].Date)
	assert.Equal(t, "2024-07-01", list[30].Date)
	assert.Equal(t, []string{"2024-06-01..2024-07-01@"}, st.shiftCalls)
}

func TestRecruitments_TimeZoneDecidesToday(t *testing.T) {
	st := newMockStore()
	st.requirements = []models.StaffingRequirement{everyDay(1)}
	jst := time.FixedZone("JST", 9*3600)
	late := time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC) // 05:00 on June 1 in Tokyo
	svc := New(st, nil, nil, WithClock(func() time.Time { return late }), WithLocation(jst), WithWindowDays(0))

	list, err := svc.Recruitments(context.Background(), caller)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-06-01", list[0].Date)
}

func TestRecruitments_StoreFailure(t *testing.T) {
	st := newMockStore()
	st.reqsErr = errors.New("connection refused")
	svc := newService(st)

	_, err := svc.Recruitments(context.Background(), caller)
	require.Error(t, err)

	ue := AsUserError(err)
	assert.Equal(t, KindUnavailable, ue.Kind)
	assert.Equal(t, "failed to fetch recruitments", ue.Message)
	assert.ErrorContains(t, err, "connection refused")
}

func TestEnter_SucceedsWhenEntriesTableMissing(t *testing.T) {
	st := newMockStore()
	st.requirements = []models.StaffingRequirement{everyDay(1)}
	st.entryErr = errors.New("no such table: shift_entries")
	svc := newService(st)

	res, err := svc.Enter(context.Background(), caller, "2024-06-03-L1-D1")
	require.NoError(t, err)
	assert.True(t, res.Local)
	assert.Equal(t, entry.RemoteFailed, res.Remote)

	list, err := svc.Recruitments(context.Background(), caller)
	require.NoError(t, err)
	for _, r := range list {
		assert.Equal(t, r.ID == "2024-06-03-L1-D1", r.Entered, r.ID)
	}
}

func TestEnter_Confirmed(t *testing.T) {
	st := newMockStore()
	st.requirements = []models.StaffingRequirement{everyDay(1)}
	svc := newService(st)

	res, err := svc.Enter(context.Background(), caller, "2024-06-01-L1-D1")
	require.NoError(t, err)
	assert.Equal(t, entry.RemoteConfirmed, res.Remote)
	require.Len(t, st.entries, 1)
	assert.Equal(t, "staff-1", st.entries[0].StaffID)
}

func TestEnter_UnknownRecruitment(t *testing.T) {
	svc := newService(newMockStore())

	_, err := svc.Enter(context.Background(), caller, "2024-06-01-L9-D9")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, AsUserError(err).Kind)
}

func TestSaveRequest_EncodesSlotsForAvailable(t *testing.T) {
	st := newMockStore()
	svc := newService(st)

	view, err := svc.SaveRequest(context.Background(), caller, "2024-06-10", SaveRequestInput{
		RequestType: "○",
		TimeSlots:   []string{"C", "A"},
		Note:        "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, preference.Available, view.RequestType)
	assert.Equal(t, []string{"A", "C"}, view.TimeSlots)

	stored := st.requests["staff-1|2024-06-10"]
	require.NotNil(t, stored.Note)
	assert.Equal(t, "[時間帯:A,C] hello", *stored.Note)
	assert.Equal(t, "◯", stored.RequestType)
	assert.Equal(t, "2024-06", stored.YearMonth)
}

func TestSaveRequest_NoSlotsForOtherSymbols(t *testing.T) {
	st := newMockStore()
	svc := newService(st)

	_, err := svc.SaveRequest(context.Background(), caller, "2024-06-10", SaveRequestInput{
		RequestType: "×",
		TimeSlots:   []string{"A"},
	})
	require.NoError(t, err)
	assert.Nil(t, st.requests["staff-1|2024-06-10"].Note)
}

func TestSaveRequest_Validation(t *testing.T) {
	svc := newService(newMockStore())
	ctx := context.Background()

	_, err := svc.SaveRequest(ctx, caller, "2024-6-1", SaveRequestInput{RequestType: "◯"})
	assert.Equal(t, KindInvalid, AsUserError(err).Kind)

	_, err = svc.SaveRequest(ctx, caller, "2024-06-01", SaveRequestInput{RequestType: "?"})
	assert.Equal(t, KindInvalid, AsUserError(err).Kind)

	_, err = svc.SaveRequest(ctx, caller, "2024-06-01", SaveRequestInput{RequestType: "◯", TimeSlots: []string{"Z"}})
	assert.Equal(t, KindInvalid, AsUserError(err).Kind)
}

func TestMonthRequests_DecodesNotes(t *testing.T) {
	st := newMockStore()
	legacy := "午前 only"
	tagged := "[時間帯:D] late"
	off := "family"
	st.requests["staff-1|2024-06-02"] = models.ShiftRequest{StaffID: "staff-1", Date: "2024-06-02", RequestType: "◯", Note: &legacy}
	st.requests["staff-1|2024-06-03"] = models.ShiftRequest{StaffID: "staff-1", Date: "2024-06-03", RequestType: "◯", Note: &tagged}
	st.requests["staff-1|2024-06-04"] = models.ShiftRequest{StaffID: "staff-1", Date: "2024-06-04", RequestType: "△", Note: &off}
	st.requests["staff-2|2024-06-04"] = models.ShiftRequest{StaffID: "staff-2", Date: "2024-06-04", RequestType: "×"}
	svc := newService(st)

	views, err := svc.MonthRequests(context.Background(), caller, june)
	require.NoError(t, err)
	require.Len(t, views, 3)

	byDate := map[string]RequestView{}
	for _, v := range views {
		byDate[v.Date] = v
	}
	assert.Equal(t, []string{"A", "B"}, byDate["2024-06-02"].TimeSlots)
	assert.Equal(t, []string{"D"}, byDate["2024-06-03"].TimeSlots)
	assert.Equal(t, "late", byDate["2024-06-03"].Note)
	assert.Nil(t, byDate["2024-06-04"].TimeSlots)
	assert.Equal(t, "family", byDate["2024-06-04"].Note)
}

func TestApplyWeekdayThenAggregate(t *testing.T) {
	st := newMockStore()
	svc := newService(st)
	ctx := context.Background()

	n, err := svc.ApplyWeekday(ctx, caller, june, time.Sunday, SaveRequestInput{RequestType: "×"})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	view, err := svc.WeekdayPreference(ctx, caller, june, time.Sunday)
	require.NoError(t, err)
	assert.False(t, view.Mixed)
	assert.Equal(t, preference.Unavailable, view.RequestType)

	_, err = svc.SaveRequest(ctx, caller, "2024-06-16", SaveRequestInput{RequestType: "◯"})
	require.NoError(t, err)

	view, err = svc.WeekdayPreference(ctx, caller, june, time.Sunday)
	require.NoError(t, err)
	assert.True(t, view.Mixed)
	assert.Empty(t, view.RequestType)
}

func TestDeleteRequest(t *testing.T) {
	st := newMockStore()
	svc := newService(st)
	ctx := context.Background()

	_, err := svc.SaveRequest(ctx, caller, "2024-06-05", SaveRequestInput{RequestType: "△"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRequest(ctx, caller, "2024-06-05"))
	assert.Empty(t, st.requests)

	err = svc.DeleteRequest(ctx, caller, "2024-06-05")
	assert.Equal(t, KindNotFound, AsUserError(err).Kind)
}

func TestMonthShifts_ScopedToCaller(t *testing.T) {
	st := newMockStore()
	st.shifts = []models.Shift{
		{StaffID: "staff-1", Date: "2024-06-03", Status: models.StatusConfirmed},
		{StaffID: "staff-2", Date: "2024-06-03", Status: models.StatusConfirmed},
		{StaffID: "staff-1", Date: "2024-07-01", Status: models.StatusConfirmed},
	}
	svc := newService(st)

	shifts, err := svc.MonthShifts(context.Background(), caller, june)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, []string{"2024-06-01..2024-06-30@staff-1"}, st.shiftCalls)
}

func TestResolveMonth(t *testing.T) {
	svc := newService(newMockStore())

	m, err := svc.ResolveMonth("")
	require.NoError(t, err)
	assert.Equal(t, june, m)

	_, err = svc.ResolveMonth("June")
	assert.Equal(t, KindInvalid, AsUserError(err).Kind)
}
