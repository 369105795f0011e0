package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shift-board-api/pkg/models"
)

// ValidateRequirements checks a JSON batch of requirements without writing it.
// Rows that would match the same date/location/duty code are reported because
// each of them produces its own recruitment.
func (h *Handler) ValidateRequirements(c *gin.Context) {
	var input struct {
		Requirements []models.StaffingRequirement `json:"requirements"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Requirements) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one requirement is required",
		})
		return
	}

	for i, r := range input.Requirements {
		if r.RequiredStaffCount < 0 {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("requirements[%d]: negative required_staff_count", i)})
			return
		}
		if r.DayOfWeek != nil && (*r.DayOfWeek < 0 || *r.DayOfWeek > 6) {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("requirements[%d]: day_of_week out of range", i)})
			return
		}
		if r.DayOfWeek != nil && r.SpecificDate != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("requirements[%d]: day_of_week and specific_date are mutually exclusive", i)})
			return
		}
	}

	// Detect rows sharing a qualifier for the same slot
	seen := make(map[string]int)
	var overlaps []string
	for i, r := range input.Requirements {
		key := r.LocationID + "|" + r.DutyCodeID + "|" + qualifier(r)
		if first, ok := seen[key]; ok {
			overlaps = append(overlaps, fmt.Sprintf("requirements[%d] duplicates requirements[%d]", i, first))
			continue
		}
		seen[key] = i
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"overlaps": overlaps,
		"stats": gin.H{
			"requirement_count": len(input.Requirements),
		},
	})
}

func qualifier(r models.StaffingRequirement) string {
	switch {
	case r.DayOfWeek != nil:
		return fmt.Sprintf("dow:%d", *r.DayOfWeek)
	case r.SpecificDate != nil:
		return "date:" + *r.SpecificDate
	}
	return "daily"
}
