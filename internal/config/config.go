package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultAnonymousStaffID is the identity used when AUTH_MODE=none
const DefaultAnonymousStaffID = "00000000-0000-0000-0000-000000000001"

// Config represents the service configuration read from the environment
type Config struct {
	Port              string `validate:"required,numeric"`
	GinMode           string
	DatabaseURL       string
	DataPath          string `validate:"required_without=DatabaseURL"`
	JWTSecret         string `validate:"required"`
	APIMasterSecret   string `validate:"required"`
	AdminCode         string `validate:"required"`
	AdminPassword     string `validate:"required,min=6"`
	TimeZone          string `validate:"required"`
	AuthMode          string `validate:"oneof=jwt none"`
	AnonymousStaffID  string `validate:"omitempty,uuid"`
	RecruitWindowDays int    `validate:"min=0,max=366"`
	EntriesTable      bool
	LogFormat         string `validate:"oneof=console json"`

	location *time.Location
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	// Try root and parent directories for flexibility
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults and validation
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:              withDefault(getenv("PORT"), "8000"),
		GinMode:           getenv("GIN_MODE"),
		DatabaseURL:       getenv("DATABASE_URL"),
		DataPath:          withDefault(getenv("DATA_PATH"), "shift_board.db"),
		JWTSecret:         getenv("JWT_SECRET"),
		APIMasterSecret:   getenv("API_MASTER_SECRET"),
		AdminCode:         withDefault(getenv("ADMIN_CODE"), "admin"),
		AdminPassword:     withDefault(getenv("ADMIN_PASSWORD"), "admin123"),
		TimeZone:          withDefault(getenv("TIME_ZONE"), "Asia/Tokyo"),
		AuthMode:          withDefault(strings.ToLower(getenv("AUTH_MODE")), "jwt"),
		AnonymousStaffID:  getenv("ANONYMOUS_STAFF_ID"),
		RecruitWindowDays: 30,
		EntriesTable:      true,
		LogFormat:         withDefault(strings.ToLower(getenv("LOG_FORMAT")), "console"),
	}

	if cfg.AuthMode == "none" && cfg.AnonymousStaffID == "" {
		cfg.AnonymousStaffID = DefaultAnonymousStaffID
	}

	if v := getenv("RECRUIT_WINDOW_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RECRUIT_WINDOW_DAYS %q: %w", v, err)
		}
		cfg.RecruitWindowDays = n
	}

	if v := getenv("ENTRIES_TABLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ENTRIES_TABLE %q: %w", v, err)
		}
		cfg.EntriesTable = b
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration struct and resolves the time zone
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", cfg.TimeZone, err)
	}
	cfg.location = loc
	return nil
}

// Location returns the time zone "today" is evaluated in
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// AuthDisabled reports whether requests run as the anonymous staff identity
func (c *Config) AuthDisabled() bool {
	return c.AuthMode == "none"
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
