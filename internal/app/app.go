package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arnavshah/shift-board-api/internal/config"
	"github.com/arnavshah/shift-board-api/pkg/auth"
	"github.com/arnavshah/shift-board-api/pkg/database"
	"github.com/arnavshah/shift-board-api/pkg/entry"
	"github.com/arnavshah/shift-board-api/pkg/handlers"
	"github.com/arnavshah/shift-board-api/pkg/services"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

// App holds the wired application dependencies
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *gorm.DB
	Store   *store.Store
	Service *services.Service
	Auth    *auth.Authenticator
}

// New opens the database, ensures the admin account and builds the service
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.InitDB(cfg, logger)
	if err != nil {
		return nil, err
	}

	st := store.New(db, logger)
	if err := auth.EnsureAdminExists(ctx, st, cfg.AdminCode, cfg.AdminPassword, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure admin account: %w", err)
	}

	// The store is the entry sink even when shift_entries is not migrated;
	// entries then degrade to local-only.
	registry := entry.NewRegistry(st, logger)
	svc := services.New(st, registry, logger,
		services.WithLocation(cfg.Location()),
		services.WithWindowDays(cfg.RecruitWindowDays),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Store:   st,
		Service: svc,
		Auth:    auth.New(cfg.JWTSecret, cfg.APIMasterSecret),
	}, nil
}

// Handler builds the HTTP handler set
func (a *App) Handler() *handlers.Handler {
	return &handlers.Handler{
		Store:   a.Store,
		Service: a.Service,
		Auth:    a.Auth,
		Config:  a.Config,
		Logger:  a.Logger,
	}
}
