package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arnavshah/shift-board-api/pkg/auth"
	"github.com/arnavshah/shift-board-api/pkg/database"
	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

// CreateLocation adds a work site
func (h *Handler) CreateLocation(c *gin.Context) {
	var loc models.Location
	if err := c.ShouldBindJSON(&loc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loc.ID = ""

	if err := h.Store.CreateLocation(c.Request.Context(), &loc); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

// ListLocations returns every work site
func (h *Handler) ListLocations(c *gin.Context) {
	locs, err := h.Store.ListLocations(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locs})
}

// CreateDutyCode adds a shift template
func (h *Handler) CreateDutyCode(c *gin.Context) {
	var dc models.DutyCode
	if err := c.ShouldBindJSON(&dc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dc.ID = ""

	if err := h.Store.CreateDutyCode(c.Request.Context(), &dc); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dc)
}

// ListDutyCodes returns every shift template
func (h *Handler) ListDutyCodes(c *gin.Context) {
	codes, err := h.Store.ListDutyCodes(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duty_codes": codes})
}

// CreateRequirement adds a staffing requirement
func (h *Handler) CreateRequirement(c *gin.Context) {
	var req models.StaffingRequirement
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = ""

	reqs := []models.StaffingRequirement{req}
	if err := h.Store.CreateRequirements(c.Request.Context(), reqs); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reqs[0])
}

// ListRequirements returns every staffing requirement with its joins
func (h *Handler) ListRequirements(c *gin.Context) {
	reqs, err := h.Store.ListRequirements(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requirements": reqs})
}

// DeleteRequirement removes a staffing requirement
func (h *Handler) DeleteRequirement(c *gin.Context) {
	if err := h.Store.DeleteRequirement(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Requirement deleted"})
}

// CreateShift adds one shift assignment; status defaults to confirmed
func (h *Handler) CreateShift(c *gin.Context) {
	var sh models.Shift
	if err := c.ShouldBindJSON(&sh); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sh.ID = ""
	if sh.Status == "" {
		sh.Status = models.StatusConfirmed
	}

	shifts := []models.Shift{sh}
	if err := h.Store.CreateShifts(c.Request.Context(), shifts); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shifts[0])
}

// CreateStaff adds a staff account
func (h *Handler) CreateStaff(c *gin.Context) {
	var req struct {
		Code     string `json:"code" binding:"required"`
		Name     string `json:"name"`
		Password string `json:"password" binding:"required,min=6"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	staff := &models.Staff{Code: req.Code, Name: req.Name, PasswordHash: hash, IsAdmin: req.IsAdmin}
	if err := h.Store.CreateStaff(c.Request.Context(), staff); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, staff)
}

// GenerateKey creates a new integration key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.RateLimit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}
	if req.RateLimit == 0 {
		req.RateLimit = defaultRateLimit
	}

	key := h.Auth.GenerateHMACKey(req.Name)
	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: preview(key),
		RateLimit:  req.RateLimit,
	}

	if err := h.db().WithContext(c.Request.Context()).Create(&apiKey).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A key with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   apiKey.ID,
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all integration keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.db().WithContext(c.Request.Context()).Find(&keys).Error; err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey marks an integration key as revoked. The row stays so the
// middleware keeps rejecting the key instead of registering it again.
func (h *Handler) RevokeKey(c *gin.Context) {
	res := h.db().WithContext(c.Request.Context()).
		Model(&database.APIKey{}).
		Where("id = ? AND revoked_at IS NULL", c.Param("id")).
		Update("revoked_at", time.Now())
	if res.Error != nil {
		h.Logger.Error("failed to revoke key", zap.Error(res.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not revoke key"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found or already revoked"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the daily request limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	res := h.db().WithContext(c.Request.Context()).
		Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", req.RateLimit)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns the last 30 days of usage for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.APIUsage
	err := h.db().WithContext(c.Request.Context()).
		Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage).Error
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// storeError reports a store failure; validation failures are the caller's fault
func (h *Handler) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if store.IsInvalid(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, store.ErrConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.Logger.Error("store failure", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "Database request failed"})
}
