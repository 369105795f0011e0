package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/arnavshah/shift-board-api/pkg/models"
)

// FindStaffByCode looks up a staff member by login code
func (s *Store) FindStaffByCode(ctx context.Context, code string) (*models.Staff, error) {
	var staff models.Staff
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	return &staff, nil
}

// CreateStaff inserts a staff member. A taken code returns ErrConflict.
func (s *Store) CreateStaff(ctx context.Context, staff *models.Staff) error {
	_, err := s.FindStaffByCode(ctx, staff.Code)
	if err == nil {
		return fmt.Errorf("%w: staff code %q", ErrConflict, staff.Code)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := s.db.WithContext(ctx).Create(staff).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: staff code %q", ErrConflict, staff.Code)
		}
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

// CreateLocation validates and inserts a location
func (s *Store) CreateLocation(ctx context.Context, loc *models.Location) error {
	if err := validate.Struct(loc); err != nil {
		return invalidRow("location", err)
	}
	if err := s.db.WithContext(ctx).Create(loc).Error; err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

// ListLocations returns every location ordered by code
func (s *Store) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locs []models.Location
	if err := s.db.WithContext(ctx).Order("code").Find(&locs).Error; err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	return locs, nil
}

// CreateDutyCode validates and inserts a duty code
func (s *Store) CreateDutyCode(ctx context.Context, dc *models.DutyCode) error {
	if err := validate.Struct(dc); err != nil {
		return invalidRow("duty code", err)
	}
	if err := s.db.WithContext(ctx).Create(dc).Error; err != nil {
		return fmt.Errorf("failed to create duty code: %w", err)
	}
	return nil
}

// ListDutyCodes returns every duty code ordered by code
func (s *Store) ListDutyCodes(ctx context.Context) ([]models.DutyCode, error) {
	var codes []models.DutyCode
	if err := s.db.WithContext(ctx).Order("code").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to query duty codes: %w", err)
	}
	return codes, nil
}

// CreateRequirements validates and inserts requirements in one transaction
func (s *Store) CreateRequirements(ctx context.Context, reqs []models.StaffingRequirement) error {
	if len(reqs) == 0 {
		return nil
	}
	for i := range reqs {
		if err := validateRequirement(&reqs[i]); err != nil {
			return err
		}
	}
	if err := s.db.WithContext(ctx).Omit(clauseAssociations...).Create(&reqs).Error; err != nil {
		return fmt.Errorf("failed to create requirements: %w", err)
	}
	return nil
}

// DeleteRequirement removes a requirement by id
func (s *Store) DeleteRequirement(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.StaffingRequirement{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete requirement: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateShifts validates and inserts shifts in one statement
func (s *Store) CreateShifts(ctx context.Context, shifts []models.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	for i := range shifts {
		if err := validate.Struct(&shifts[i]); err != nil {
			return invalidRow("shift for "+shifts[i].Date, err)
		}
	}
	if err := s.db.WithContext(ctx).Omit(clauseAssociations...).Create(&shifts).Error; err != nil {
		return fmt.Errorf("failed to create shifts: %w", err)
	}
	return nil
}

// associations are written through their own endpoints, never as a side effect
var clauseAssociations = []string{"Location", "DutyCode"}

func validateRequirement(r *models.StaffingRequirement) error {
	if err := validate.Struct(r); err != nil {
		return invalidRow("requirement", err)
	}
	if r.DayOfWeek != nil && r.SpecificDate != nil {
		return invalidRow("requirement", errors.New("day_of_week and specific_date are mutually exclusive"))
	}
	return nil
}
