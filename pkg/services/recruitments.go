package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arnavshah/shift-board-api/pkg/dates"
	"github.com/arnavshah/shift-board-api/pkg/entry"
	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/recruitment"
)

// Recruitments derives the open shortages from today through the window end.
// Shifts and requirements are fetched concurrently; the derivation waits for both.
func (s *Service) Recruitments(ctx context.Context, id models.Identity) ([]models.Recruitment, error) {
	today := s.Today()
	from := dates.Format(today)
	to := dates.Format(today.AddDate(0, 0, s.windowDays))

	var (
		shifts       []models.Shift
		requirements []models.StaffingRequirement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shifts, err = s.store.ListConfirmedShifts(gctx, from, to, "")
		return err
	})
	g.Go(func() error {
		var err error
		requirements, err = s.store.ListRequirements(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to fetch recruitments", zap.Error(err))
		return nil, unavailable("failed to fetch recruitments", err)
	}

	calc := recruitment.NewCalculator(requirements, shifts)
	calc.WindowDays = s.windowDays
	list := calc.Shortages(today)

	for i := range list {
		list[i].Entered = s.entries.IsEntered(id.StaffID, list[i].ID)
	}
	return list, nil
}

// Enter registers the caller for an open recruitment. Once the recruitment is
// found the entry always succeeds; the result says whether it was persisted.
func (s *Service) Enter(ctx context.Context, id models.Identity, recruitmentID string) (*entry.Result, error) {
	list, err := s.Recruitments(ctx, id)
	if err != nil {
		return nil, err
	}

	rec, ok := recruitment.Find(list, recruitmentID)
	if !ok {
		return nil, notFound("no open recruitment " + recruitmentID)
	}

	res := s.entries.Enter(ctx, id.StaffID, rec)
	return &res, nil
}
