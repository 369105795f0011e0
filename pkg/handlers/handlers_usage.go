package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/pkg/database"
)

const maxUsageDays = 90

// usageTotals sums every day recorded for a key
type usageTotals struct {
	Requests     int64 `json:"requests"`
	Shifts       int64 `json:"shifts"`
	Requirements int64 `json:"requirements"`
}

// GetMyUsage reports the calling key's quota for today, its recent daily
// counters (?days=, default 30) and lifetime totals
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKey := c.MustGet(apiKeyKey).(*database.APIKey)

	days := 30
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxUsageDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 90"})
			return
		}
		days = n
	}

	ctx := c.Request.Context()
	var history []database.APIUsage
	err := h.db().WithContext(ctx).
		Where("key_id = ?", apiKey.ID).Order("date desc").Limit(days).Find(&history).Error
	if err != nil {
		h.Logger.Error("failed to load usage history", zap.Uint("key_id", apiKey.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not fetch usage details"})
		return
	}

	var totals usageTotals
	err = h.db().WithContext(ctx).Model(&database.APIUsage{}).
		Select("COALESCE(SUM(request_count), 0) AS requests, "+
			"COALESCE(SUM(shifts_imported), 0) AS shifts, "+
			"COALESCE(SUM(requirements_imported), 0) AS requirements").
		Where("key_id = ?", apiKey.ID).
		Scan(&totals).Error
	if err != nil {
		h.Logger.Error("failed to sum usage", zap.Uint("key_id", apiKey.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not fetch usage details"})
		return
	}

	// The request being served is counted after it completes
	usedToday := 0
	if len(history) > 0 && history[0].Date == h.today() {
		usedToday = history[0].RequestCount
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"remaining":     max(apiKey.RateLimit-usedToday-1, 0),
		"usage_history": history,
		"totals":        totals,
	})
}
