package store

import (
	"context"

	"github.com/arnavshah/shift-board-api/pkg/models"
)

// ShiftStore reads confirmed shifts
type ShiftStore interface {
	ListConfirmedShifts(ctx context.Context, from, to string, staffID string) ([]models.Shift, error)
}

// RequirementStore reads staffing requirements with their joins
type RequirementStore interface {
	ListRequirements(ctx context.Context) ([]models.StaffingRequirement, error)
}

// RequestStore reads and writes shift preference requests
type RequestStore interface {
	ListShiftRequests(ctx context.Context, staffID, from, to string) ([]models.ShiftRequest, error)
	UpsertShiftRequests(ctx context.Context, requests []models.ShiftRequest) error
	DeleteShiftRequest(ctx context.Context, staffID, date string) error
}

// EntryStore persists recruitment entries
type EntryStore interface {
	InsertEntry(ctx context.Context, entry *models.ShiftEntry) error
}

// ShiftBoardStore is everything the shift-board service reads and writes
type ShiftBoardStore interface {
	ShiftStore
	RequirementStore
	RequestStore
	EntryStore
}
