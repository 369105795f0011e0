package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shift-board-api/pkg/models"
)

// csvRow is one data line keyed by header name
type csvRow map[string]string

// lookups resolves location and duty codes to ids for CSV rows
type lookups struct {
	locations map[string]string
	dutyCodes map[string]string
}

func (h *Handler) loadLookups(ctx context.Context) (*lookups, error) {
	locs, err := h.Store.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := h.Store.ListDutyCodes(ctx)
	if err != nil {
		return nil, err
	}

	l := &lookups{locations: map[string]string{}, dutyCodes: map[string]string{}}
	for _, loc := range locs {
		l.locations[loc.Code] = loc.ID
	}
	for _, dc := range codes {
		l.dutyCodes[dc.Code] = dc.ID
	}
	return l, nil
}

// ref picks the id column if present, otherwise resolves the code column
func (l *lookups) ref(row csvRow, idCol, codeCol string, byCode map[string]string) (string, error) {
	if id := row[idCol]; id != "" {
		return id, nil
	}
	code := row[codeCol]
	if code == "" {
		return "", fmt.Errorf("%s or %s is required", idCol, codeCol)
	}
	id, ok := byCode[code]
	if !ok {
		return "", fmt.Errorf("unknown %s %q", codeCol, code)
	}
	return id, nil
}

// ImportShiftsCSV bulk-inserts shifts from the multipart "file" field.
// Columns: staff_id, location_id|location_code, duty_code_id|duty_code, date, status, note.
func (h *Handler) ImportShiftsCSV(c *gin.Context) {
	rows, ok := h.readUpload(c)
	if !ok {
		return
	}

	lk, err := h.loadLookups(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}

	var shifts []models.Shift
	var skipped []string
	for i, row := range rows {
		locID, err := lk.ref(row, "location_id", "location_code", lk.locations)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("line %d: %v", i+2, err))
			continue
		}
		dutyID, err := lk.ref(row, "duty_code_id", "duty_code", lk.dutyCodes)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("line %d: %v", i+2, err))
			continue
		}

		sh := models.Shift{
			StaffID:    row["staff_id"],
			LocationID: locID,
			DutyCodeID: dutyID,
			Date:       row["date"],
			Status:     row["status"],
		}
		if sh.Status == "" {
			sh.Status = models.StatusConfirmed
		}
		if note := row["note"]; note != "" {
			sh.Note = &note
		}
		shifts = append(shifts, sh)
	}

	if err := h.Store.CreateShifts(c.Request.Context(), shifts); err != nil {
		h.storeError(c, err)
		return
	}

	countImported(c, len(shifts), 0)
	c.JSON(http.StatusOK, gin.H{"imported": len(shifts), "skipped": skipped})
}

// ImportRequirementsCSV bulk-inserts staffing requirements from the multipart "file" field.
// Columns: location_id|location_code, duty_code_id|duty_code, required_staff_count,
// day_of_week (blank = any), specific_date (blank = any).
func (h *Handler) ImportRequirementsCSV(c *gin.Context) {
	rows, ok := h.readUpload(c)
	if !ok {
		return
	}

	lk, err := h.loadLookups(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}

	var reqs []models.StaffingRequirement
	var skipped []string
	for i, row := range rows {
		req, err := requirementFromRow(lk, row)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("line %d: %v", i+2, err))
			continue
		}
		reqs = append(reqs, req)
	}

	if err := h.Store.CreateRequirements(c.Request.Context(), reqs); err != nil {
		h.storeError(c, err)
		return
	}

	countImported(c, 0, len(reqs))
	c.JSON(http.StatusOK, gin.H{"imported": len(reqs), "skipped": skipped})
}

func requirementFromRow(lk *lookups, row csvRow) (models.StaffingRequirement, error) {
	var req models.StaffingRequirement

	locID, err := lk.ref(row, "location_id", "location_code", lk.locations)
	if err != nil {
		return req, err
	}
	dutyID, err := lk.ref(row, "duty_code_id", "duty_code", lk.dutyCodes)
	if err != nil {
		return req, err
	}

	count, err := strconv.Atoi(strings.TrimSpace(row["required_staff_count"]))
	if err != nil {
		return req, fmt.Errorf("invalid required_staff_count %q", row["required_staff_count"])
	}

	req = models.StaffingRequirement{LocationID: locID, DutyCodeID: dutyID, RequiredStaffCount: count}
	if v := strings.TrimSpace(row["day_of_week"]); v != "" {
		wd, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("invalid day_of_week %q", v)
		}
		req.DayOfWeek = &wd
	}
	if v := strings.TrimSpace(row["specific_date"]); v != "" {
		req.SpecificDate = &v
	}
	return req, nil
}

// readUpload parses the uploaded CSV, writing a 400 on failure
func (h *Handler) readUpload(c *gin.Context) ([]csvRow, bool) {
	fh, _ := c.FormFile("file")
	if fh == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return nil, false
	}

	rows, err := readCSV(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return rows, true
}

func readCSV(fh *multipart.FileHeader) ([]csvRow, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []csvRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make(csvRow, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
