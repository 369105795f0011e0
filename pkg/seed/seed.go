package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/arnavshah/shift-board-api/pkg/auth"
	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

// LocationSeed is a work site keyed by its code
type LocationSeed struct {
	Code         string `yaml:"code" validate:"required,max=20"`
	Name         string `yaml:"name" validate:"required,max=100"`
	BusinessType string `yaml:"businessType,omitempty"`
}

// DutyCodeSeed is a shift template keyed by its code
type DutyCodeSeed struct {
	Code  string `yaml:"code" validate:"required,max=20"`
	Name  string `yaml:"name,omitempty"`
	Start string `yaml:"start" validate:"required,datetime=15:04"`
	End   string `yaml:"end" validate:"required,datetime=15:04"`
}

// RequirementSeed references a location and duty code by code
type RequirementSeed struct {
	Location  string `yaml:"location" validate:"required"`
	DutyCode  string `yaml:"dutyCode" validate:"required"`
	Required  int    `yaml:"required" validate:"min=0"`
	DayOfWeek *int   `yaml:"dayOfWeek,omitempty" validate:"omitempty,min=0,max=6,excluded_with=Date"`
	Date      string `yaml:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// StaffSeed is a login account
type StaffSeed struct {
	Code     string `yaml:"code" validate:"required"`
	Name     string `yaml:"name"`
	Password string `yaml:"password" validate:"required,min=6"`
	Admin    bool   `yaml:"admin,omitempty"`
}

// File is the root of a seed document
type File struct {
	Locations    []LocationSeed    `yaml:"locations" validate:"dive"`
	DutyCodes    []DutyCodeSeed    `yaml:"dutyCodes" validate:"dive"`
	Requirements []RequirementSeed `yaml:"requirements" validate:"dive"`
	Staff        []StaffSeed       `yaml:"staff" validate:"dive"`
}

// Summary counts rows created by Apply; existing rows are left untouched
type Summary struct {
	Locations    int
	DutyCodes    int
	Requirements int
	Staff        int
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadFromPath reads and validates a seed file
func LoadFromPath(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("seed validation failed: %w", err)
	}

	locs := make(map[string]bool, len(f.Locations))
	for _, l := range f.Locations {
		locs[l.Code] = true
	}
	codes := make(map[string]bool, len(f.DutyCodes))
	for _, d := range f.DutyCodes {
		codes[d.Code] = true
	}
	for i, r := range f.Requirements {
		if !locs[r.Location] {
			return nil, fmt.Errorf("requirements[%d]: unknown location %q", i, r.Location)
		}
		if !codes[r.DutyCode] {
			return nil, fmt.Errorf("requirements[%d]: unknown duty code %q", i, r.DutyCode)
		}
	}
	return &f, nil
}

// Apply writes the seed into the store. Locations, duty codes and staff that
// already exist by code are reused; requirements are always appended.
func Apply(ctx context.Context, st *store.Store, f *File, logger *zap.Logger) (*Summary, error) {
	sum := &Summary{}

	existingLocs, err := st.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	locIDs := make(map[string]string, len(existingLocs))
	for _, l := range existingLocs {
		locIDs[l.Code] = l.ID
	}
	for _, l := range f.Locations {
		if _, ok := locIDs[l.Code]; ok {
			continue
		}
		loc := &models.Location{Code: l.Code, LocationName: l.Name, BusinessType: l.BusinessType}
		if err := st.CreateLocation(ctx, loc); err != nil {
			return nil, err
		}
		locIDs[l.Code] = loc.ID
		sum.Locations++
	}

	existingCodes, err := st.ListDutyCodes(ctx)
	if err != nil {
		return nil, err
	}
	dutyIDs := make(map[string]string, len(existingCodes))
	for _, d := range existingCodes {
		dutyIDs[d.Code] = d.ID
	}
	for _, d := range f.DutyCodes {
		if _, ok := dutyIDs[d.Code]; ok {
			continue
		}
		dc := &models.DutyCode{Code: d.Code, StartTime: d.Start, EndTime: d.End}
		if d.Name != "" {
			name := d.Name
			dc.Name = &name
		}
		if err := st.CreateDutyCode(ctx, dc); err != nil {
			return nil, err
		}
		dutyIDs[d.Code] = dc.ID
		sum.DutyCodes++
	}

	reqs := make([]models.StaffingRequirement, 0, len(f.Requirements))
	for _, r := range f.Requirements {
		req := models.StaffingRequirement{
			LocationID:         locIDs[r.Location],
			DutyCodeID:         dutyIDs[r.DutyCode],
			RequiredStaffCount: r.Required,
			DayOfWeek:          r.DayOfWeek,
		}
		if r.Date != "" {
			date := r.Date
			req.SpecificDate = &date
		}
		reqs = append(reqs, req)
	}
	if err := st.CreateRequirements(ctx, reqs); err != nil {
		return nil, err
	}
	sum.Requirements = len(reqs)

	for _, s := range f.Staff {
		_, err := st.FindStaffByCode(ctx, s.Code)
		if err == nil {
			logger.Debug("staff already exists", zap.String("code", s.Code))
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		hash, err := auth.HashPassword(s.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", s.Code, err)
		}
		if err := st.CreateStaff(ctx, &models.Staff{Code: s.Code, Name: s.Name, PasswordHash: hash, IsAdmin: s.Admin}); err != nil {
			return nil, err
		}
		sum.Staff++
	}

	logger.Info("seed applied",
		zap.Int("locations", sum.Locations),
		zap.Int("duty_codes", sum.DutyCodes),
		zap.Int("requirements", sum.Requirements),
		zap.Int("staff", sum.Staff),
	)
	return sum, nil
}
