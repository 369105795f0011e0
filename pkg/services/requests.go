package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/pkg/dates"
	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/notecodec"
	"github.com/arnavshah/shift-board-api/pkg/preference"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

// SaveRequestInput is what a caller submits for one day
type SaveRequestInput struct {
	RequestType string   `json:"request_type"`
	TimeSlots   []string `json:"time_slots"`
	Note        string   `json:"note"`
}

// RequestView is a stored request with its note decoded
type RequestView struct {
	Date        string            `json:"date"`
	RequestType preference.Symbol `json:"request_type"`
	TimeSlots   []string          `json:"time_slots,omitempty"`
	Note        string            `json:"note"`
}

// WeekdayView is the aggregate preference for one weekday of a month
type WeekdayView struct {
	Month       string            `json:"month"`
	Weekday     int               `json:"weekday"`
	RequestType preference.Symbol `json:"request_type,omitempty"`
	Mixed       bool              `json:"mixed"`
}

// MonthRequests returns the caller's requests in month with notes decoded
func (s *Service) MonthRequests(ctx context.Context, id models.Identity, month time.Time) ([]RequestView, error) {
	reqs, err := s.fetchMonth(ctx, id, month)
	if err != nil {
		return nil, err
	}

	views := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		sym, _ := preference.Normalize(r.RequestType)
		v := RequestView{Date: r.Date, RequestType: sym}
		note := ""
		if r.Note != nil {
			note = *r.Note
		}
		if sym == preference.Available {
			v.TimeSlots, v.Note = notecodec.Decode(note)
		} else {
			v.Note = note
		}
		views = append(views, v)
	}
	return views, nil
}

// SaveRequest upserts the caller's request for date
func (s *Service) SaveRequest(ctx context.Context, id models.Identity, date string, in SaveRequestInput) (*RequestView, error) {
	day, err := dates.Parse(date)
	if err != nil {
		return nil, invalid("date must be yyyy-MM-dd")
	}
	req, view, err := buildRequest(id, day, in)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertShiftRequests(ctx, []models.ShiftRequest{req}); err != nil {
		s.logger.Error("failed to save shift request", zap.String("date", date), zap.Error(err))
		return nil, unavailable("failed to save request", err)
	}
	return view, nil
}

// DeleteRequest removes the caller's request for date
func (s *Service) DeleteRequest(ctx context.Context, id models.Identity, date string) error {
	if _, err := dates.Parse(date); err != nil {
		return invalid("date must be yyyy-MM-dd")
	}

	err := s.store.DeleteShiftRequest(ctx, id.StaffID, date)
	if errors.Is(err, store.ErrNotFound) {
		return notFound("no request for " + date)
	}
	if err != nil {
		s.logger.Error("failed to delete shift request", zap.String("date", date), zap.Error(err))
		return unavailable("failed to delete request", err)
	}
	return nil
}

// WeekdayPreference folds the month's requests on weekday into one symbol
func (s *Service) WeekdayPreference(ctx context.Context, id models.Identity, month time.Time, weekday time.Weekday) (*WeekdayView, error) {
	reqs, err := s.fetchMonth(ctx, id, month)
	if err != nil {
		return nil, err
	}

	sym, ok := preference.WeekdayAggregate(month, weekday, preference.IndexByDate(reqs))
	return &WeekdayView{
		Month:       month.Format(dates.MonthLayout),
		Weekday:     int(weekday),
		RequestType: sym,
		Mixed:       !ok,
	}, nil
}

// ApplyWeekday writes the same request to every date in month falling on weekday
func (s *Service) ApplyWeekday(ctx context.Context, id models.Identity, month time.Time, weekday time.Weekday, in SaveRequestInput) (int, error) {
	days := dates.WeekdaysInMonth(month, weekday)
	reqs := make([]models.ShiftRequest, 0, len(days))
	for _, d := range days {
		req, _, err := buildRequest(id, d, in)
		if err != nil {
			return 0, err
		}
		reqs = append(reqs, req)
	}

	if err := s.store.UpsertShiftRequests(ctx, reqs); err != nil {
		s.logger.Error("failed to apply weekday requests", zap.Int("weekday", int(weekday)), zap.Error(err))
		return 0, unavailable("failed to save requests", err)
	}
	return len(reqs), nil
}

// Calendar lays out the caller's month with request marks
func (s *Service) Calendar(ctx context.Context, id models.Identity, month time.Time) (*preference.Calendar, error) {
	reqs, err := s.fetchMonth(ctx, id, month)
	if err != nil {
		return nil, err
	}
	cal := preference.BuildCalendar(month, s.Today(), reqs)
	return &cal, nil
}

func (s *Service) fetchMonth(ctx context.Context, id models.Identity, month time.Time) ([]models.ShiftRequest, error) {
	first, last := dates.MonthBounds(month)
	reqs, err := s.store.ListShiftRequests(ctx, id.StaffID, dates.Format(first), dates.Format(last))
	if err != nil {
		s.logger.Error("failed to fetch shift requests", zap.String("staff_id", id.StaffID), zap.Error(err))
		return nil, unavailable("failed to fetch requests", err)
	}
	return reqs, nil
}

// buildRequest validates input and encodes time slots into the note for available days
func buildRequest(id models.Identity, day time.Time, in SaveRequestInput) (models.ShiftRequest, *RequestView, error) {
	sym, ok := preference.Normalize(in.RequestType)
	if !ok {
		return models.ShiftRequest{}, nil, invalid("request_type must be one of ◯ △ ×")
	}

	view := &RequestView{Date: dates.Format(day), RequestType: sym, Note: in.Note}
	note := in.Note
	if sym == preference.Available {
		for _, slot := range in.TimeSlots {
			if !notecodec.IsKnown(slot) {
				return models.ShiftRequest{}, nil, invalid("unknown time slot %q", slot)
			}
		}
		note = notecodec.Encode(in.TimeSlots, in.Note)
		view.TimeSlots, _ = notecodec.Decode(note)
	}

	req := models.ShiftRequest{
		StaffID:     id.StaffID,
		Date:        dates.Format(day),
		RequestType: string(sym),
		YearMonth:   day.Format(dates.MonthLayout),
	}
	if note != "" {
		req.Note = &note
	}
	return req, view, nil
}
