package entry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/pkg/models"
)

// mockSink implements store.EntryStore
type mockSink struct {
	mu       sync.Mutex
	inserted []*models.ShiftEntry
	err      error
}

func (m *mockSink) InsertEntry(ctx context.Context, e *models.ShiftEntry) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, e)
	return nil
}

var rec = models.Recruitment{
	ID:         "2024-06-01-L1-D1",
	Date:       "2024-06-01",
	LocationID: "L1",
	DutyCodeID: "D1",
}

func TestEnter_Confirmed(t *testing.T) {
	sink := &mockSink{}
	r := NewRegistry(sink, zap.NewNop())

	res := r.Enter(context.Background(), "staff-1", rec)

	assert.True(t, res.Local)
	assert.Equal(t, RemoteConfirmed, res.Remote)
	assert.False(t, res.Degraded())
	require.Len(t, sink.inserted, 1)
	assert.Equal(t, "staff-1", sink.inserted[0].StaffID)
	assert.Equal(t, models.EntryStatusPending, sink.inserted[0].Status)
	assert.Equal(t, "D1", sink.inserted[0].DutyCodeID)
}

func TestEnter_RemoteFailureIsSwallowed(t *testing.T) {
	r := NewRegistry(&mockSink{err: errors.New(`relation "shift_entries" does not exist`)}, zap.NewNop())

	res := r.Enter(context.Background(), "staff-1", rec)

	assert.True(t, res.Local)
	assert.Equal(t, RemoteFailed, res.Remote)
	assert.Contains(t, res.RemoteError, "does not exist")
	assert.True(t, res.Degraded())
	assert.True(t, r.IsEntered("staff-1", rec.ID))
}

func TestEnter_ContextEndedIsAttempted(t *testing.T) {
	r := NewRegistry(&mockSink{err: fmt.Errorf("insert: %w", context.DeadlineExceeded)}, nil)

	res := r.Enter(context.Background(), "staff-1", rec)

	assert.Equal(t, RemoteAttempted, res.Remote)
	assert.True(t, r.IsEntered("staff-1", rec.ID))
}

func TestEnter_NoSink(t *testing.T) {
	r := NewRegistry(nil, nil)

	res := r.Enter(context.Background(), "staff-1", rec)

	assert.True(t, res.Local)
	assert.Equal(t, RemoteFailed, res.Remote)
	assert.True(t, r.IsEntered("staff-1", rec.ID))
}

func TestIsEntered_PerStaff(t *testing.T) {
	r := NewRegistry(&mockSink{}, nil)
	r.Enter(context.Background(), "staff-1", rec)

	assert.True(t, r.IsEntered("staff-1", rec.ID))
	assert.False(t, r.IsEntered("staff-2", rec.ID))
	assert.False(t, r.IsEntered("staff-1", "other"))
}

func TestEnter_Concurrent(t *testing.T) {
	r := NewRegistry(&mockSink{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rc := rec
			rc.ID = fmt.Sprintf("r-%d", i)
			r.Enter(context.Background(), fmt.Sprintf("staff-%d", i%5), rc)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.True(t, r.IsEntered(fmt.Sprintf("staff-%d", i%5), fmt.Sprintf("r-%d", i)))
	}
}
