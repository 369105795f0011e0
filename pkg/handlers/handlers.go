package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/shift-board-api/internal/config"
	"github.com/arnavshah/shift-board-api/pkg/auth"
	"github.com/arnavshah/shift-board-api/pkg/database"
	"github.com/arnavshah/shift-board-api/pkg/dates"
	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/services"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

const identityKey = "identity"

// Handler contains dependencies for the route handlers
type Handler struct {
	Store   *store.Store
	Service *services.Service
	Auth    *auth.Authenticator
	Config  *config.Config
	Logger  *zap.Logger
}

func (h *Handler) db() *gorm.DB {
	return h.Store.DB()
}

// RequestLogger logs every request through zap
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// AuthMiddleware resolves the caller identity from a bearer JWT. With
// AUTH_MODE=none every request runs as the configured anonymous staff id.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Config.AuthDisabled() {
			c.Set(identityKey, models.Identity{StaffID: h.Config.AnonymousStaffID})
			c.Next()
			return
		}

		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		id, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// AdminMiddleware rejects callers without the admin claim. It must run after AuthMiddleware.
func (h *Handler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identity(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

const (
	apiKeyKey               = "apiKey"
	shiftsImportedKey       = "shiftsImported"
	requirementsImportedKey = "requirementsImported"
)

// defaultRateLimit applies to keys first seen by the middleware rather than created by an admin
const defaultRateLimit = 10000

// APIKeyMiddleware verifies an HMAC integration key, enforces its daily limit
// and counts every request that reaches a handler against that limit.
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		name, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		// Keys signed outside the admin API (shiftctl keygen) are registered on first use
		var apiKey database.APIKey
		err = h.db().WithContext(c.Request.Context()).
			Where(database.APIKey{Key: key}).
			Attrs(database.APIKey{KeyPreview: preview(key), Name: name, RateLimit: defaultRateLimit}).
			FirstOrCreate(&apiKey).Error
		if err != nil {
			h.Logger.Error("failed to load api key", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Could not load API key"})
			return
		}
		if apiKey.Revoked() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key revoked"})
			return
		}

		usage, err := h.usageOn(c, apiKey.ID, h.today())
		if err != nil {
			h.Logger.Error("failed to load api usage", zap.Error(err))
		}
		if usage.RequestCount >= apiKey.RateLimit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily request limit reached"})
			return
		}

		now := time.Now()
		h.db().WithContext(c.Request.Context()).Model(&apiKey).Update("last_used", now)

		c.Set(apiKeyKey, &apiKey)
		c.Next()
		h.RecordUsage(c)
	}
}

// countImported attributes imported rows to the current sync request
func countImported(c *gin.Context, shifts, requirements int) {
	c.Set(shiftsImportedKey, shifts)
	c.Set(requirementsImportedKey, requirements)
}

func (h *Handler) usageOn(c *gin.Context, keyID uint, date string) (database.APIUsage, error) {
	var usage database.APIUsage
	err := h.db().WithContext(c.Request.Context()).Where("key_id = ? AND date = ?", keyID, date).First(&usage).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return usage, err
	}
	return usage, nil
}

// RecordUsage adds one request and any imported rows to today's counters for
// the request's key using a single upsert
func (h *Handler) RecordUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get(apiKeyKey)
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)
	shiftCount := c.GetInt(shiftsImportedKey)
	requirementCount := c.GetInt(requirementsImportedKey)

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	err := h.db().WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":         gorm.Expr("request_count + ?", 1),
			"shifts_imported":       gorm.Expr("shifts_imported + ?", shiftCount),
			"requirements_imported": gorm.Expr("requirements_imported + ?", requirementCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:                apiKey.ID,
		Date:                 h.today(),
		RequestCount:         1,
		ShiftsImported:       shiftCount,
		RequirementsImported: requirementCount,
	}).Error
	if err != nil {
		h.Logger.Warn("failed to record usage", zap.Uint("key_id", apiKey.ID), zap.Error(err))
	}
}

// Login exchanges a staff code and password for a token
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Code     string `json:"code" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff, err := auth.Login(c.Request.Context(), h.Store, req.Code, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.Logger.Error("login failed", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Auth.CreateToken(staff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "staff_id": staff.ID})
}

// respondError maps a service error to a status code and readable message
func (h *Handler) respondError(c *gin.Context, err error) {
	ue := services.AsUserError(err)
	status := http.StatusBadGateway
	switch ue.Kind {
	case services.KindInvalid:
		status = http.StatusBadRequest
	case services.KindNotFound:
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": ue.Message})
}

func (h *Handler) today() string {
	return dates.Format(h.Service.Today())
}

func identity(c *gin.Context) models.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(models.Identity)
	return id
}

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// preview shortens a key for display (e.g. "pay...9f2c")
func preview(key string) string {
	if len(key) > 8 {
		return key[:3] + "..." + key[len(key)-4:]
	}
	return "****"
}
