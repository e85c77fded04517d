package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// mockReportCache always misses, so every request recomputes
type mockReportCache struct{}

func (m *mockReportCache) Get(ctx context.Context, key string) (*models.ReportCache, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	return nil
}

func (m *mockReportCache) InvalidateAll(ctx context.Context) error { return nil }

func (m *mockReportCache) CleanExpired(ctx context.Context) error { return nil }

func newReportFixture() (*ReportHandler, *mockBookingRepo) {
	propertyRepo := &mockPropertyRepo{}
	bookingRepo := &mockBookingRepo{}
	leaseRepo := &mockLeaseRepo{}

	occupancySvc := services.NewOccupancyService(propertyRepo, bookingRepo, leaseRepo, &mockReportCache{}, time.Minute)
	reportSvc := services.NewReportService(bookingRepo, leaseRepo, propertyRepo, occupancySvc)
	exportSvc := services.NewExportService(occupancySvc)

	return NewReportHandler(reportSvc, occupancySvc, exportSvc, 92), bookingRepo
}

func TestReportOccupancy_WindowCap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newReportFixture()

	// 1. Five months blows the 92-day cap
	w := serveGet(h.Occupancy, "/reports/occupancy?start_date=2026-01-01&end_date=2026-06-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "el rango máximo del reporte es de 92 días")

	// 2. Exactly 92 days is still allowed
	w = serveGet(h.Occupancy, "/reports/occupancy?start_date=2026-01-01&end_date=2026-04-03")
	assert.Equal(t, http.StatusOK, w.Code)

	// 3. A month over an empty portfolio aggregates fine
	w = serveGet(h.Occupancy, "/reports/occupancy?start_date=2026-03-01&end_date=2026-03-31")
	assert.Equal(t, http.StatusOK, w.Code)

	var report models.OccupancyReport
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 30, report.Summary.DaysInRange)
	assert.Equal(t, 0, report.Summary.TotalProperties)
}

func TestReportOccupancy_BadWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newReportFixture()

	w := serveGet(h.Occupancy, "/reports/occupancy?end_date=2026-03-31")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start_date inválido")

	w = serveGet(h.Occupancy, "/reports/occupancy?start_date=2026-03-01&end_date=2026-03-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "end_date debe ser posterior a start_date")
}

func TestReportExportOccupancy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newReportFixture()

	// 1. Explicit CSV
	w := serveGet(h.ExportOccupancy, "/reports/occupancy/export?format=csv&start_date=2026-03-01&end_date=2026-03-31")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=occupancy_report_")
	assert.Contains(t, w.Body.String(), "Reporte de Ocupación")

	// 2. CSV is the default format
	w = serveGet(h.ExportOccupancy, "/reports/occupancy/export?start_date=2026-03-01&end_date=2026-03-31")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	// 3. Unknown formats are refused before doing any work
	w = serveGet(h.ExportOccupancy, "/reports/occupancy/export?format=doc&start_date=2026-03-01&end_date=2026-03-31")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "formato inválido, use csv, xlsx o pdf")

	// 4. The window cap guards exports too
	w = serveGet(h.ExportOccupancy, "/reports/occupancy/export?format=csv&start_date=2026-01-01&end_date=2026-06-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportBookingsCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, bookingRepo := newReportFixture()

	bookingRepo.mockFindInRange = func(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{
				ID:           7,
				PropertyID:   4,
				Property:     &models.Property{ID: 4, Name: "Casa Marina"},
				GuestName:    "Ana Castro",
				CheckInDate:  day(2026, 3, 10),
				CheckOutDate: day(2026, 3, 14),
				Status:       models.BookingStatusConfirmed,
				Source:       models.BookingSourceDirect,
				TotalAmount:  4800,
				Currency:     "HNL",
			},
		}, nil
	}

	w := serveGet(h.BookingsCSV, "/reports/bookings_csv?start_date=2026-03-01&end_date=2026-03-31")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "attachment; filename=bookings.csv", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Reserva ID")
	assert.Contains(t, w.Body.String(), "Ana Castro")
	assert.Contains(t, w.Body.String(), "Confirmada")

	// Reversed bounds come back as a request error
	w = serveGet(h.BookingsCSV, "/reports/bookings_csv?start_date=2026-03-31&end_date=2026-03-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
