package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/shift-board-api/pkg/models"
)

var (
	// ErrNotFound is returned when a row addressed by key does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalid wraps rows rejected by validation before a write
	ErrInvalid = errors.New("invalid")
	// ErrConflict is returned when a write collides with a unique key
	ErrConflict = errors.New("already exists")
)

// IsInvalid reports whether err is a validation rejection
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

func invalidRow(what string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrInvalid, what, err)
}

var validate = validator.New()

// Store provides database operations using gorm
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New wraps an open gorm connection
func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// DB exposes the underlying connection for the admin and sync handlers
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ListConfirmedShifts returns confirmed shifts dated from..to inclusive, with
// location and duty code joined. An empty staffID returns every staff member's shifts.
func (s *Store) ListConfirmedShifts(ctx context.Context, from, to string, staffID string) ([]models.Shift, error) {
	q := s.db.WithContext(ctx).
		Preload("Location").
		Preload("DutyCode").
		Where("date >= ? AND date <= ? AND status = ?", from, to, models.StatusConfirmed)
	if staffID != "" {
		q = q.Where("staff_id = ?", staffID)
	}

	var shifts []models.Shift
	if err := q.Order("date").Find(&shifts).Error; err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	return validRows(s.logger, "shifts", shifts), nil
}

// ListRequirements returns every staffing requirement with its joins
func (s *Store) ListRequirements(ctx context.Context) ([]models.StaffingRequirement, error) {
	var reqs []models.StaffingRequirement
	err := s.db.WithContext(ctx).
		Preload("Location").
		Preload("DutyCode").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query requirements: %w", err)
	}

	reqs = validRows(s.logger, "location_requirements", reqs)
	out := reqs[:0]
	for _, r := range reqs {
		if r.DayOfWeek != nil && r.SpecificDate != nil {
			s.logger.Warn("dropping requirement with both weekday and specific date",
				zap.String("id", r.ID))
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ListShiftRequests returns one staff member's requests dated from..to inclusive
func (s *Store) ListShiftRequests(ctx context.Context, staffID, from, to string) ([]models.ShiftRequest, error) {
	var reqs []models.ShiftRequest
	err := s.db.WithContext(ctx).
		Where("staff_id = ? AND date >= ? AND date <= ?", staffID, from, to).
		Order("date").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query shift requests: %w", err)
	}
	return validRows(s.logger, "shift_requests", reqs), nil
}

// UpsertShiftRequests writes requests, replacing any existing row with the
// same (staff_id, date)
func (s *Store) UpsertShiftRequests(ctx context.Context, requests []models.ShiftRequest) error {
	if len(requests) == 0 {
		return nil
	}
	for i := range requests {
		if err := validate.Struct(&requests[i]); err != nil {
			return invalidRow("shift request for "+requests[i].Date, err)
		}
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "staff_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"request_type", "note", "year_month", "updated_at"}),
	}).Create(&requests).Error
	if err != nil {
		return fmt.Errorf("failed to upsert shift requests: %w", err)
	}
	return nil
}

// DeleteShiftRequest removes the caller's request for one date
func (s *Store) DeleteShiftRequest(ctx context.Context, staffID, date string) error {
	res := s.db.WithContext(ctx).
		Where("staff_id = ? AND date = ?", staffID, date).
		Delete(&models.ShiftRequest{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete shift request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertEntry writes one recruitment entry
func (s *Store) InsertEntry(ctx context.Context, entry *models.ShiftEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to insert shift entry: %w", err)
	}
	return nil
}

// validRows drops rows that fail struct validation, logging each one
func validRows[T any](logger *zap.Logger, table string, rows []T) []T {
	out := rows[:0]
	for i := range rows {
		if err := validate.Struct(&rows[i]); err != nil {
			logger.Warn("dropping malformed row", zap.String("table", table), zap.Error(err))
			continue
		}
		out = append(out, rows[i])
	}
	return out
}
