package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/pkg/dates"
	"github.com/arnavshah/shift-board-api/pkg/entry"
	"github.com/arnavshah/shift-board-api/pkg/recruitment"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

// Service runs the shift-board operations for one caller at a time
type Service struct {
	store      store.ShiftBoardStore
	entries    *entry.Registry
	logger     *zap.Logger
	now        func() time.Time
	location   *time.Location
	windowDays int
}

// Option customises a Service
type Option func(*Service)

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone "today" is evaluated in
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

// WithWindowDays sets how many days past today recruitments are derived for
func WithWindowDays(days int) Option {
	return func(s *Service) { s.windowDays = days }
}

// New creates a Service. A nil registry keeps entries in memory only.
func New(st store.ShiftBoardStore, entries *entry.Registry, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if entries == nil {
		entries = entry.NewRegistry(nil, logger)
	}
	s := &Service{
		store:      st,
		entries:    entries,
		logger:     logger,
		now:        time.Now,
		location:   time.UTC,
		windowDays: recruitment.DefaultWindowDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar day in the service's time zone
func (s *Service) Today() time.Time {
	return dates.Day(s.now().In(s.location))
}

// ResolveMonth parses yyyy-MM, defaulting to the current month
func (s *Service) ResolveMonth(raw string) (time.Time, error) {
	if raw == "" {
		first, _ := dates.MonthBounds(s.Today())
		return first, nil
	}
	m, err := dates.ParseMonth(raw)
	if err != nil {
		return time.Time{}, invalid("month must be yyyy-MM")
	}
	return m, nil
}
