package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/pkg/dates"
	"github.com/arnavshah/shift-board-api/pkg/models"
)

// MonthShifts returns the caller's confirmed shifts in month, ordered by date
func (s *Service) MonthShifts(ctx context.Context, id models.Identity, month time.Time) ([]models.Shift, error) {
	first, last := dates.MonthBounds(month)

	shifts, err := s.store.ListConfirmedShifts(ctx, dates.Format(first), dates.Format(last), id.StaffID)
	if err != nil {
		s.logger.Error("failed to fetch shifts", zap.String("staff_id", id.StaffID), zap.Error(err))
		return nil, unavailable("failed to fetch shifts", err)
	}
	return shifts, nil
}
