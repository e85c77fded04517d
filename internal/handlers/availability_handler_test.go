package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type mockPropertyRepo struct {
	repository.PropertyRepository
	mockFindByID      func(ctx context.Context, id uint) (*models.Property, error)
	mockFindAllActive func(ctx context.Context) ([]models.Property, error)
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPropertyRepo) FindAllActive(ctx context.Context) ([]models.Property, error) {
	if m.mockFindAllActive != nil {
		return m.mockFindAllActive(ctx)
	}
	return []models.Property{}, nil
}

type mockBookingRepo struct {
	repository.BookingRepository
	mockFindOverlapping func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error)
	mockFindInWindow    func(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Booking, error)
	mockFindInRange     func(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}

func (m *mockBookingRepo) FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
	if m.mockFindOverlapping != nil {
		return m.mockFindOverlapping(ctx, propertyID, start, end)
	}
	return []models.Booking{}, nil
}

func (m *mockBookingRepo) FindInWindow(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Booking, error) {
	if m.mockFindInWindow != nil {
		return m.mockFindInWindow(ctx, propertyIDs, start, end)
	}
	return []models.Booking{}, nil
}

func (m *mockBookingRepo) FindInRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	if m.mockFindInRange != nil {
		return m.mockFindInRange(ctx, start, end)
	}
	return []models.Booking{}, nil
}

type mockLeaseRepo struct {
	repository.LeaseRepository
	mockFindOverlapping func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Lease, error)
	mockFindInWindow    func(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Lease, error)
}

func (m *mockLeaseRepo) FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Lease, error) {
	if m.mockFindOverlapping != nil {
		return m.mockFindOverlapping(ctx, propertyID, start, end)
	}
	return []models.Lease{}, nil
}

func (m *mockLeaseRepo) FindInWindow(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Lease, error) {
	if m.mockFindInWindow != nil {
		return m.mockFindInWindow(ctx, propertyIDs, start, end)
	}
	return []models.Lease{}, nil
}

// serveGet runs a handler against a GET request and returns the recorder
func serveGet(h gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", target, nil)
	h(c)
	return w
}

// newAvailabilityFixture knows one short-term property, id 4
func newAvailabilityFixture() (*AvailabilityHandler, *mockBookingRepo) {
	propertyRepo := &mockPropertyRepo{}
	propertyRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Property, error) {
		if id != 4 {
			return nil, gorm.ErrRecordNotFound
		}
		return &models.Property{ID: 4, Name: "Casa Marina", RentalType: models.RentalTypeShortTerm, MinNights: 1, Status: models.PropertyStatusActive}, nil
	}

	bookingRepo := &mockBookingRepo{}
	svc := services.NewAvailabilityService(propertyRepo, bookingRepo, &mockLeaseRepo{})
	return NewAvailabilityHandler(svc), bookingRepo
}

func TestAvailabilityCheck_Free(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, bookingRepo := newAvailabilityFixture()

	// A stay ending on the requested check-in day does not block it
	bookingRepo.mockFindOverlapping = func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 1, PropertyID: propertyID, GuestName: "Carlos Mejía", CheckInDate: day(2026, 3, 6), CheckOutDate: day(2026, 3, 10), Status: models.BookingStatusConfirmed},
		}, nil
	}

	w := serveGet(h.Check, "/availability?property_id=4&check_in=2026-03-10&check_out=2026-03-14")
	assert.Equal(t, http.StatusOK, w.Code)

	var verdict models.AvailabilityVerdict
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))
	assert.True(t, verdict.Available)
	assert.Equal(t, 4, verdict.Nights)

	// Empty conflicts serialize as [], not null
	assert.Contains(t, w.Body.String(), `"conflicts":[]`)
}

func TestAvailabilityCheck_ConflictIsAResult(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, bookingRepo := newAvailabilityFixture()

	bookingRepo.mockFindOverlapping = func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 2, PropertyID: propertyID, GuestName: "Carlos Mejía", CheckInDate: day(2026, 3, 8), CheckOutDate: day(2026, 3, 12), Status: models.BookingStatusConfirmed},
		}, nil
	}

	// Occupied dates still answer 200: the conflict is the payload, not a failure
	w := serveGet(h.Check, "/availability?property_id=4&check_in=2026-03-10&check_out=2026-03-14")
	assert.Equal(t, http.StatusOK, w.Code)

	var verdict models.AvailabilityVerdict
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))
	assert.False(t, verdict.Available)
	assert.Len(t, verdict.Conflicts, 1)
	assert.Equal(t, "Carlos Mejía", verdict.Conflicts[0].GuestName)
	assert.Equal(t, "booking", verdict.Conflicts[0].Kind)
	assert.Equal(t, "2026-03-08", verdict.Conflicts[0].CheckInDate)
	assert.Equal(t, "2026-03-12", verdict.Conflicts[0].CheckOutDate)
}

func TestAvailabilityCheck_ExcludesOwnBooking(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, bookingRepo := newAvailabilityFixture()

	// While editing booking 7 its own dates must not count against it
	bookingRepo.mockFindOverlapping = func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 7, PropertyID: propertyID, GuestName: "Ana Castro", CheckInDate: day(2026, 3, 10), CheckOutDate: day(2026, 3, 14), Status: models.BookingStatusConfirmed},
		}, nil
	}

	w := serveGet(h.Check, "/availability?property_id=4&check_in=2026-03-10&check_out=2026-03-14&exclude_booking_id=7")
	assert.Equal(t, http.StatusOK, w.Code)

	var verdict models.AvailabilityVerdict
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))
	assert.True(t, verdict.Available)
}

func TestAvailabilityCheck_BadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newAvailabilityFixture()

	tests := []struct {
		name   string
		target string
		status int
		errMsg string
	}{
		{"missing property id", "/availability?check_in=2026-03-10&check_out=2026-03-14", http.StatusBadRequest, "property_id es requerido"},
		{"malformed check_in", "/availability?property_id=4&check_in=10-03-2026&check_out=2026-03-14", http.StatusBadRequest, "check_in inválido"},
		{"malformed check_out", "/availability?property_id=4&check_in=2026-03-10&check_out=hoy", http.StatusBadRequest, "check_out inválido"},
		{"malformed exclusion", "/availability?property_id=4&check_in=2026-03-10&check_out=2026-03-14&exclude_booking_id=abc", http.StatusBadRequest, "exclude_booking_id inválido"},
		{"reversed range", "/availability?property_id=4&check_in=2026-03-14&check_out=2026-03-10", http.StatusBadRequest, "la fecha de salida debe ser posterior a la fecha de entrada"},
		{"unknown property", "/availability?property_id=9&check_in=2026-03-10&check_out=2026-03-14", http.StatusNotFound, "registro no encontrado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveGet(h.Check, tt.target)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.errMsg)
		})
	}
}
