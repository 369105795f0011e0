package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shift-board-api/pkg/notecodec"
	"github.com/arnavshah/shift-board-api/pkg/services"
)

// ListShifts returns the caller's confirmed shifts for ?month=yyyy-MM
func (h *Handler) ListShifts(c *gin.Context) {
	month, err := h.Service.ResolveMonth(c.Query("month"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	shifts, err := h.Service.MonthShifts(c.Request.Context(), identity(c), month)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shifts": shifts})
}

// ListRequests returns the caller's preference requests for ?month=yyyy-MM
func (h *Handler) ListRequests(c *gin.Context) {
	month, err := h.Service.ResolveMonth(c.Query("month"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	reqs, err := h.Service.MonthRequests(c.Request.Context(), identity(c), month)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// SaveRequest upserts the caller's request for :date
func (h *Handler) SaveRequest(c *gin.Context) {
	var in services.SaveRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.Service.SaveRequest(c.Request.Context(), identity(c), c.Param("date"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteRequest removes the caller's request for :date
func (h *Handler) DeleteRequest(c *gin.Context) {
	if err := h.Service.DeleteRequest(c.Request.Context(), identity(c), c.Param("date")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request deleted"})
}

// GetWeekdayRequest returns the aggregate symbol for :weekday (0=Sunday) in ?month
func (h *Handler) GetWeekdayRequest(c *gin.Context) {
	month, weekday, ok := h.monthAndWeekday(c)
	if !ok {
		return
	}

	view, err := h.Service.WeekdayPreference(c.Request.Context(), identity(c), month, weekday)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ApplyWeekdayRequest writes one request to every :weekday in ?month
func (h *Handler) ApplyWeekdayRequest(c *gin.Context) {
	month, weekday, ok := h.monthAndWeekday(c)
	if !ok {
		return
	}

	var in services.SaveRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := h.Service.ApplyWeekday(c.Request.Context(), identity(c), month, weekday, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// GetCalendar returns the caller's Monday-first month grid
func (h *Handler) GetCalendar(c *gin.Context) {
	month, err := h.Service.ResolveMonth(c.Query("month"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	cal, err := h.Service.Calendar(c.Request.Context(), identity(c), month)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

// ListTimeSlots returns the A..G slot table
func (h *Handler) ListTimeSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"time_slots": notecodec.Slots})
}

// ListRecruitments returns the open shortages for the coming window
func (h *Handler) ListRecruitments(c *gin.Context) {
	list, err := h.Service.Recruitments(c.Request.Context(), identity(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recruitments": list})
}

// EnterRecruitment registers the caller for recruitment :id
func (h *Handler) EnterRecruitment(c *gin.Context) {
	res, err := h.Service.Enter(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) monthAndWeekday(c *gin.Context) (time.Time, time.Weekday, bool) {
	month, err := h.Service.ResolveMonth(c.Query("month"))
	if err != nil {
		h.respondError(c, err)
		return time.Time{}, 0, false
	}

	wd, err := strconv.Atoi(c.Param("weekday"))
	if err != nil || wd < 0 || wd > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekday must be 0 (Sunday) to 6 (Saturday)"})
		return time.Time{}, 0, false
	}
	return month, time.Weekday(wd), true
}
