package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the index route
const Version = "1.0.0"

// NewRouter wires every route onto a fresh gin engine
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(h.Logger), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Shift Board API",
			"version":   Version,
			"auth_mode": h.Config.AuthMode,
		})
	})
	r.POST("/auth/login", h.Login)

	// Staff board
	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/shifts", h.ListShifts)
		api.GET("/requests", h.ListRequests)
		api.PUT("/requests/:date", h.SaveRequest)
		api.DELETE("/requests/:date", h.DeleteRequest)
		api.GET("/weekday-requests/:weekday", h.GetWeekdayRequest)
		api.PUT("/weekday-requests/:weekday", h.ApplyWeekdayRequest)
		api.GET("/calendar", h.GetCalendar)
		api.GET("/time-slots", h.ListTimeSlots)
		api.GET("/recruitments", h.ListRecruitments)
		api.POST("/recruitments/:id/entry", h.EnterRecruitment)
	}

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware(), h.AdminMiddleware())
	{
		admin.POST("/staff", h.CreateStaff)
		admin.POST("/locations", h.CreateLocation)
		admin.GET("/locations", h.ListLocations)
		admin.POST("/duty-codes", h.CreateDutyCode)
		admin.GET("/duty-codes", h.ListDutyCodes)
		admin.POST("/requirements", h.CreateRequirement)
		admin.GET("/requirements", h.ListRequirements)
		admin.DELETE("/requirements/:id", h.DeleteRequirement)
		admin.POST("/shifts", h.CreateShift)

		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Integration endpoints
	sync := r.Group("/sync")
	sync.Use(h.APIKeyMiddleware())
	{
		sync.POST("/shifts/csv", h.ImportShiftsCSV)
		sync.POST("/requirements/csv", h.ImportRequirementsCSV)
		sync.POST("/requirements/validate", h.ValidateRequirements)
		sync.GET("/usage", h.GetMyUsage)
	}

	return r
}
