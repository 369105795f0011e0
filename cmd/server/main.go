package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/internal/app"
	"github.com/arnavshah/shift-board-api/internal/config"
	"github.com/arnavshah/shift-board-api/internal/logging"
	"github.com/arnavshah/shift-board-api/pkg/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}

	r := handlers.NewRouter(a.Handler())

	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("auth_mode", cfg.AuthMode),
		zap.String("time_zone", cfg.TimeZone),
		zap.Bool("entries_table", cfg.EntriesTable),
	)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("could not run server", zap.Error(err))
	}
}
