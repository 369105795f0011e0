// Package entry records that a staff member applied for a recruitment.
//
// The in-memory set is the source of truth for "already entered" while the
// process lives. The insert into shift_entries is best effort: the table may
// not be provisioned, and a failed insert never fails the entry.
package entry

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

// RemoteStatus is the outcome of the best-effort insert
type RemoteStatus string

const (
	// RemoteAttempted means the insert was sent but the context ended first
	RemoteAttempted RemoteStatus = "attempted"
	// RemoteConfirmed means the row was written
	RemoteConfirmed RemoteStatus = "confirmed"
	// RemoteFailed means the insert returned an error
	RemoteFailed RemoteStatus = "failed"
)

// Result reports both phases of an entry
type Result struct {
	RecruitmentID string       `json:"recruitment_id"`
	Local         bool         `json:"local_committed"`
	Remote        RemoteStatus `json:"remote"`
	RemoteError   string       `json:"remote_error,omitempty"`
}

// Degraded reports whether the entry only exists locally
func (r Result) Degraded() bool {
	return r.Remote != RemoteConfirmed
}

// Registry holds entered recruitments per staff member
type Registry struct {
	mu      sync.RWMutex
	entered map[string]map[string]struct{}
	sink    store.EntryStore
	logger  *zap.Logger
}

// NewRegistry creates a registry that mirrors entries into sink.
// A nil sink keeps entries local only.
func NewRegistry(sink store.EntryStore, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entered: make(map[string]map[string]struct{}),
		sink:    sink,
		logger:  logger,
	}
}

// Enter marks rec as entered for staffID and then tries to persist it
func (r *Registry) Enter(ctx context.Context, staffID string, rec models.Recruitment) Result {
	r.markLocal(staffID, rec.ID)
	res := Result{RecruitmentID: rec.ID, Local: true}

	if r.sink == nil {
		res.Remote = RemoteFailed
		res.RemoteError = "no entry store configured"
		return res
	}

	err := r.sink.InsertEntry(ctx, &models.ShiftEntry{
		StaffID:    staffID,
		Date:       rec.Date,
		LocationID: rec.LocationID,
		DutyCodeID: rec.DutyCodeID,
		Status:     models.EntryStatusPending,
	})
	switch {
	case err == nil:
		res.Remote = RemoteConfirmed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		res.Remote = RemoteAttempted
		res.RemoteError = err.Error()
	default:
		res.Remote = RemoteFailed
		res.RemoteError = err.Error()
	}

	if res.Remote != RemoteConfirmed {
		r.logger.Warn("shift entry kept locally only",
			zap.String("staff_id", staffID),
			zap.String("recruitment_id", rec.ID),
			zap.String("remote", string(res.Remote)),
			zap.Error(err))
	}
	return res
}

// IsEntered reports whether staffID has entered recruitmentID in this process
func (r *Registry) IsEntered(staffID, recruitmentID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entered[staffID][recruitmentID]
	return ok
}

func (r *Registry) markLocal(staffID, recruitmentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.entered[staffID]
	if !ok {
		set = make(map[string]struct{})
		r.entered[staffID] = set
	}
	set[recruitmentID] = struct{}{}
}
