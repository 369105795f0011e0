package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/internal/app"
	"github.com/arnavshah/shift-board-api/internal/config"
	"github.com/arnavshah/shift-board-api/internal/logging"
	"github.com/arnavshah/shift-board-api/pkg/handlers"
)

var (
	r       *gin.Engine
	initErr error
)

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		initErr = err
		return
	}

	logger, err := logging.New("json")
	if err != nil {
		initErr = err
		return
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", zap.Error(err))
		initErr = err
		return
	}

	gin.SetMode(gin.ReleaseMode)
	r = handlers.NewRouter(a.Handler())
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	r.ServeHTTP(w, req)
}
