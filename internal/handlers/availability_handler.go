package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityService *services.AvailabilityService
}

func NewAvailabilityHandler(availabilityService *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

// @Summary Check Availability
// @Description Check whether a property is free for a date range. Conflicts and policy violations are results, not errors.
// @Tags Availability
// @Produce json
// @Param property_id query int true "Property ID"
// @Param check_in query string true "Check-in date (YYYY-MM-DD)"
// @Param check_out query string true "Check-out date (YYYY-MM-DD)"
// @Param exclude_booking_id query int false "Booking ID to exclude (when editing an existing booking)"
// @Success 200 {object} models.AvailabilityVerdict
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /availability/check [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	propertyID, _ := strconv.ParseUint(c.Query("property_id"), 10, 32)
	if propertyID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id es requerido"})
		return
	}

	checkIn, err := time.Parse(models.DateLayout, c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in inválido, use el formato YYYY-MM-DD"})
		return
	}
	checkOut, err := time.Parse(models.DateLayout, c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out inválido, use el formato YYYY-MM-DD"})
		return
	}

	var exclude *models.ReservationRef
	if raw := c.Query("exclude_booking_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "exclude_booking_id inválido"})
			return
		}
		exclude = &models.ReservationRef{Kind: models.ReservationKindBooking, ID: uint(id)}
	}

	verdict, err := h.availabilityService.CheckAvailabilityExcluding(c.Request.Context(), uint(propertyID), checkIn, checkOut, exclude)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

type ReportHandler struct {
	reportService    *services.ReportService
	occupancyService *services.OccupancyService
	exportService    *services.ExportService
	maxWindowDays    int
}

func NewReportHandler(
	reportService *services.ReportService,
	occupancyService *services.OccupancyService,
	exportService *services.ExportService,
	maxWindowDays int,
) *ReportHandler {
	return &ReportHandler{
		reportService:    reportService,
		occupancyService: occupancyService,
		exportService:    exportService,
		maxWindowDays:    maxWindowDays,
	}
}

// parseWindow validates the report date range. Aggregation cost grows with
// the window, so it is capped server-side.
func (h *ReportHandler) parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse(models.DateLayout, c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date inválido, use el formato YYYY-MM-DD"})
		return start, time.Time{}, false
	}
	end, err := time.Parse(models.DateLayout, c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date inválido, use el formato YYYY-MM-DD"})
		return start, end, false
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date debe ser posterior a start_date"})
		return start, end, false
	}
	if models.DaysBetween(start, end) > h.maxWindowDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("el rango máximo del reporte es de %d días", h.maxWindowDays)})
		return start, end, false
	}
	return start, end, true
}

// parsePropertyIDs reads the optional property_id filter. Accepts a single id
// or a comma-separated list; empty means the whole portfolio.
func parsePropertyIDs(c *gin.Context) []uint {
	raw := c.Query("property_id")
	if raw == "" {
		return nil
	}
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err == nil && id > 0 {
			ids = append(ids, uint(id))
		}
	}
	return ids
}

// @Summary Occupancy Report
// @Description Aggregated occupancy, revenue, ADR and RevPAR over a date range
// @Tags Reports
// @Produce json
// @Param property_id query string false "Property ID (single or comma-separated); empty for all"
// @Param start_date query string true "Window start (YYYY-MM-DD)"
// @Param end_date query string true "Window end, exclusive (YYYY-MM-DD)"
// @Success 200 {object} models.OccupancyReport
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reports/occupancy [get]
func (h *ReportHandler) Occupancy(c *gin.Context) {
	start, end, ok := h.parseWindow(c)
	if !ok {
		return
	}

	report, err := h.occupancyService.GetOccupancyReport(c.Request.Context(), parsePropertyIDs(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// @Summary Export Occupancy Report
// @Description Download the occupancy report as CSV, XLSX or PDF
// @Tags Reports
// @Produce application/octet-stream
// @Param format query string true "Export format" Enums(csv, xlsx, pdf)
// @Param property_id query string false "Property ID (single or comma-separated); empty for all"
// @Param start_date query string true "Window start (YYYY-MM-DD)"
// @Param end_date query string true "Window end, exclusive (YYYY-MM-DD)"
// @Success 200 {file} file "occupancy report"
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reports/occupancy_export [get]
func (h *ReportHandler) ExportOccupancy(c *gin.Context) {
	start, end, ok := h.parseWindow(c)
	if !ok {
		return
	}
	propertyIDs := parsePropertyIDs(c)

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, filename, err = h.exportService.ExportCSV(c.Request.Context(), propertyIDs, start, end)
		contentType = "text/csv"
	case "xlsx":
		data, filename, err = h.exportService.ExportXLSX(c.Request.Context(), propertyIDs, start, end)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, filename, err = h.exportService.ExportPDF(c.Request.Context(), propertyIDs, start, end)
		contentType = "application/pdf"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "formato inválido, use csv, xlsx o pdf"})
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}

// @Summary Occupancy Statement PDF
// @Description Download the monthly occupancy statement for one property
// @Tags Reports
// @Produce application/pdf
// @Param property_id query int true "Property ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {file} file "statement.pdf"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /reports/occupancy_statement_pdf [get]
func (h *ReportHandler) OccupancyStatementPDF(c *gin.Context) {
	propertyID, _ := strconv.ParseUint(c.Query("property_id"), 10, 32)
	if propertyID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id es requerido"})
		return
	}
	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month es requerido (YYYY-MM)"})
		return
	}

	buf, err := h.reportService.GenerateOccupancyStatementPDF(c.Request.Context(), uint(propertyID), month)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=occupancy_statement_%d_%s.pdf", propertyID, month))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// @Summary Bookings CSV
// @Description Download all bookings in a date range as CSV
// @Tags Reports
// @Produce text/csv
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Success 200 {file} file "bookings.csv"
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reports/bookings_csv [get]
func (h *ReportHandler) BookingsCSV(c *gin.Context) {
	buf, err := h.reportService.GenerateBookingsCSV(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=bookings.csv")
	c.String(http.StatusOK, buf.String())
}
