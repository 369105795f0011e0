package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arnavshah/shift-board-api/internal/config"
	"github.com/arnavshah/shift-board-api/pkg/models"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// Revoked reports whether an admin has withdrawn the key. The row is kept so
// a still-valid signature cannot register the key again.
func (k *APIKey) Revoked() bool {
	return k.RevokedAt != nil
}

// APIUsage represents the api_usage table: one row per key per day
type APIUsage struct {
	ID                   uint   `gorm:"primaryKey" json:"id"`
	KeyID                uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date                 string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount         int    `gorm:"default:0" json:"request_count"`
	ShiftsImported       int    `gorm:"default:0" json:"shifts_imported"`
	RequirementsImported int    `gorm:"default:0" json:"requirements_imported"`
}

// InitDB opens the configured database and migrates the schema.
// DATABASE_URL selects Postgres; otherwise a SQLite file at DATA_PATH is used.
func InitDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	gormCfg := &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}

	if cfg.DatabaseURL != "" {
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		})
		gormCfg.PrepareStmt = false
		log.Info("using postgres database")
	} else {
		dialector = sqlite.Open(cfg.DataPath)
		log.Info("using sqlite database", zap.String("path", cfg.DataPath))
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := Migrate(db, cfg.EntriesTable); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table. The shift_entries table is optional:
// entry registration keeps working without it.
func Migrate(db *gorm.DB, withEntries bool) error {
	tables := []any{
		&APIKey{},
		&APIUsage{},
		&models.Staff{},
		&models.Location{},
		&models.DutyCode{},
		&models.Shift{},
		&models.StaffingRequirement{},
		&models.ShiftRequest{},
	}
	if withEntries {
		tables = append(tables, &models.ShiftEntry{})
	}

	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
