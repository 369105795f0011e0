package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusConfirmed marks a shift that counts as assigned
const StatusConfirmed = "確定"

// EntryStatusPending is the status of a freshly registered entry
const EntryStatusPending = "pending"

// Identity is the caller every store and derivation call acts for
type Identity struct {
	StaffID string `json:"staff_id"`
	IsAdmin bool   `json:"is_admin"`
}

// Location represents a physical work site
type Location struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	BusinessType string `json:"business_type" validate:"omitempty,max=100"`
	LocationName string `gorm:"not null" json:"location_name" validate:"required,max=100"`
	Code         string `gorm:"index" json:"code" validate:"max=20"`
}

// TableName overrides the default table name
func (Location) TableName() string { return "locations" }

// DutyCode names a shift template with its start/end time
type DutyCode struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	Code      string  `gorm:"not null;index" json:"code" validate:"required,max=20"`
	Name      *string `json:"name"`
	StartTime string  `gorm:"not null" json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string  `gorm:"not null" json:"end_time" validate:"required,datetime=15:04"`
}

// TableName overrides the default table name
func (DutyCode) TableName() string { return "duty_codes" }

// Staff is a member of staff who can sign in
type Staff struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Code         string    `gorm:"unique;not null" json:"code"`
	Name         string    `json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (Staff) TableName() string { return "staff" }

// Shift is a confirmed assignment of one staff member to one location and duty code
type Shift struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	StaffID    string    `gorm:"index;not null" json:"staff_id" validate:"required"`
	LocationID string    `gorm:"not null" json:"location_id" validate:"required"`
	DutyCodeID string    `gorm:"not null" json:"duty_code_id" validate:"required"`
	Date       string    `gorm:"index;not null" json:"date" validate:"required,datetime=2006-01-02"`
	Status     string    `gorm:"not null" json:"status" validate:"required"`
	Note       *string   `json:"note"`
	Location   *Location `gorm:"foreignKey:LocationID" json:"location,omitempty" validate:"-"`
	DutyCode   *DutyCode `gorm:"foreignKey:DutyCodeID" json:"duty_code,omitempty" validate:"-"`
}

// TableName overrides the default table name
func (Shift) TableName() string { return "shifts" }

// StaffingRequirement declares how many staff a location needs for a duty code.
// DayOfWeek (0=Sunday) and SpecificDate are mutually exclusive qualifiers;
// both nil means every day.
type StaffingRequirement struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	LocationID         string    `gorm:"not null" json:"location_id" validate:"required"`
	DutyCodeID         string    `gorm:"not null" json:"duty_code_id" validate:"required"`
	RequiredStaffCount int       `gorm:"not null;default:0" json:"required_staff_count" validate:"min=0"`
	DayOfWeek          *int      `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	SpecificDate       *string   `json:"specific_date" validate:"omitempty,datetime=2006-01-02"`
	Location           *Location `gorm:"foreignKey:LocationID" json:"location,omitempty" validate:"-"`
	DutyCode           *DutyCode `gorm:"foreignKey:DutyCodeID" json:"duty_code,omitempty" validate:"-"`
}

// TableName overrides the default table name
func (StaffingRequirement) TableName() string { return "location_requirements" }

// ShiftRequest is one staff member's preference for one date
type ShiftRequest struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	StaffID     string    `gorm:"uniqueIndex:idx_staff_date;not null" json:"staff_id" validate:"required"`
	Date        string    `gorm:"uniqueIndex:idx_staff_date;not null" json:"date" validate:"required,datetime=2006-01-02"`
	RequestType string    `gorm:"not null" json:"request_type" validate:"required,oneof=◯ ○ △ ×"`
	Note        *string   `json:"note"`
	YearMonth   string    `gorm:"index;not null" json:"year_month" validate:"required,datetime=2006-01"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (ShiftRequest) TableName() string { return "shift_requests" }

// ShiftEntry records that a staff member applied for a recruitment
type ShiftEntry struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	StaffID    string    `gorm:"index;not null" json:"staff_id"`
	Date       string    `gorm:"not null" json:"date"`
	LocationID string    `gorm:"not null" json:"location_id"`
	DutyCodeID string    `json:"duty_code_id"`
	Status     string    `gorm:"not null" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (ShiftEntry) TableName() string { return "shift_entries" }

// Recruitment is a derived, unpersisted shortage on one date/location/duty code
type Recruitment struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	DutyCodeID   string `json:"duty_code_id"`
	DutyCode     string `json:"duty_code"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Required     int    `json:"required"`
	Assigned     int    `json:"assigned"`
	Shortage     int    `json:"shortage"`
	DaysUntil    int    `json:"days_until"`
	Urgency      string `json:"urgency,omitempty"`
	Entered      bool   `json:"entered"`
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// BeforeCreate assigns a uuid primary key
func (l *Location) BeforeCreate(*gorm.DB) error { newID(&l.ID); return nil }

// BeforeCreate assigns a uuid primary key
func (d *DutyCode) BeforeCreate(*gorm.DB) error { newID(&d.ID); return nil }

// BeforeCreate assigns a uuid primary key
func (s *Staff) BeforeCreate(*gorm.DB) error { newID(&s.ID); return nil }

// BeforeCreate assigns a uuid primary key
func (s *Shift) BeforeCreate(*gorm.DB) error { newID(&s.ID); return nil }

// BeforeCreate assigns a uuid primary key
func (r *StaffingRequirement) BeforeCreate(*gorm.DB) error { newID(&r.ID); return nil }

// BeforeCreate assigns a uuid primary key
func (r *ShiftRequest) BeforeCreate(*gorm.DB) error { newID(&r.ID); return nil }

// BeforeCreate assigns a uuid primary key
func (e *ShiftEntry) BeforeCreate(*gorm.DB) error { newID(&e.ID); return nil }
