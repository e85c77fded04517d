package services

import (
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGenerateBookingsCSV(t *testing.T) {
	// 1. Setup FindInRange with one normal booking and one cancelled booking
	// whose property record is gone
	bookingRepo := &mockBookingRepo{}
	var gotStart, gotEnd time.Time
	bookingRepo.mockFindInRange = func(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
		gotStart = start
		gotEnd = end
		return []models.Booking{
			{
				ID:           7,
				GuestName:    "Ana Castro",
				Property:     &models.Property{Name: "Casa Marina"},
				CheckInDate:  day(2026, 3, 10),
				CheckOutDate: day(2026, 3, 14),
				Status:       models.BookingStatusConfirmed,
				Source:       models.BookingSourceDirect,
				TotalAmount:  4800,
				Currency:     "HNL",
			},
			{
				ID:           9,
				GuestName:    "Luis Paz",
				CheckInDate:  day(2026, 3, 5),
				CheckOutDate: day(2026, 3, 7),
				Status:       models.BookingStatusCancelled,
				Source:       models.BookingSourcePortal,
				TotalAmount:  1500.5,
				Currency:     "HNL",
			},
		}, nil
	}

	service := NewReportService(bookingRepo, &mockLeaseRepo{}, nil, nil)

	// 2. Generate the CSV
	buf, err := service.GenerateBookingsCSV(context.Background(), "2026-03-01", "2026-04-01")
	assert.NoError(t, err)
	assert.NotNil(t, buf)

	// 3. The requested bounds reach the repository as parsed dates
	assert.Equal(t, day(2026, 3, 1), models.DateOnly(gotStart))
	assert.Equal(t, day(2026, 4, 1), models.DateOnly(gotEnd))

	// 4. Parse it back and verify content
	records, err := csv.NewReader(buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 3)

	assert.Equal(t, []string{"Reserva ID", "Huésped", "Propiedad", "Entrada", "Salida", "Noches", "Estado", "Fuente", "Monto", "Moneda"}, records[0])
	assert.Equal(t, []string{"7", "Ana Castro", "Casa Marina", "2026-03-10", "2026-03-14", "4", "Confirmada", "Directa", "4800.00", "HNL"}, records[1])
	// Missing property renders as N/A, status and source come out translated
	assert.Equal(t, []string{"9", "Luis Paz", "N/A", "2026-03-05", "2026-03-07", "2", "Cancelada", "Portal", "1500.50", "HNL"}, records[2])
}

func TestGenerateBookingsCSV_EmptyBoundsWiden(t *testing.T) {
	bookingRepo := &mockBookingRepo{}
	var gotStart, gotEnd time.Time
	bookingRepo.mockFindInRange = func(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
		gotStart = start
		gotEnd = end
		return []models.Booking{}, nil
	}

	service := NewReportService(bookingRepo, &mockLeaseRepo{}, nil, nil)

	buf, err := service.GenerateBookingsCSV(context.Background(), "", "")
	assert.NoError(t, err)

	// No bounds means everything: zero start, far-future end
	assert.True(t, gotStart.IsZero())
	assert.True(t, gotEnd.After(time.Now().AddDate(9, 0, 0)))

	records, err := csv.NewReader(buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 1) // header only
}

func TestGenerateBookingsCSV_InvalidRange(t *testing.T) {
	service := NewReportService(&mockBookingRepo{}, &mockLeaseRepo{}, nil, nil)

	_, err := service.GenerateBookingsCSV(context.Background(), "not-a-date", "2026-04-01")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = service.GenerateBookingsCSV(context.Background(), "2026-04-01", "2026-03-01")
	assert.ErrorIs(t, err, ErrInvalidRange)

	// Equal bounds are an empty window, also refused
	_, err = service.GenerateBookingsCSV(context.Background(), "2026-03-01", "2026-03-01")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestMonthReservations(t *testing.T) {
	// 1. Bookings: two counted stays sharing a start date plus one cancelled
	bookingRepo := &mockBookingRepo{}
	bookingRepo.mockFindInWindow = func(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Booking, error) {
		assert.Equal(t, []uint{4}, propertyIDs)
		return []models.Booking{
			{ID: 2, PropertyID: 4, GuestName: "B", CheckInDate: day(2026, 3, 12), CheckOutDate: day(2026, 3, 15), Status: models.BookingStatusConfirmed},
			{ID: 3, PropertyID: 4, GuestName: "C", CheckInDate: day(2026, 3, 2), CheckOutDate: day(2026, 3, 4), Status: models.BookingStatusCancelled},
			{ID: 1, PropertyID: 4, GuestName: "A", CheckInDate: day(2026, 3, 12), CheckOutDate: day(2026, 3, 13), Status: models.BookingStatusPending},
		}, nil
	}

	// 2. Leases: one active lease opening the month
	leaseRepo := &mockLeaseRepo{}
	leaseRepo.mockFindInWindow = func(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Lease, error) {
		return []models.Lease{
			{ID: 5, PropertyID: 4, StartDate: day(2026, 3, 1), EndDate: day(2026, 3, 10), Status: models.LeaseStatusActive, Tenant: &models.Tenant{FullName: "Rosa Díaz"}},
		}, nil
	}

	service := NewReportService(bookingRepo, leaseRepo, nil, nil)

	reservations, err := service.monthReservations(context.Background(), 4, day(2026, 3, 1), day(2026, 4, 1))
	assert.NoError(t, err)

	// 3. The cancelled booking is gone and order is start date then id
	assert.Len(t, reservations, 3)
	assert.Equal(t, models.ReservationKindLease, reservations[0].Kind)
	assert.Equal(t, "Rosa Díaz", reservations[0].GuestName)
	assert.Equal(t, uint(1), reservations[1].ID)
	assert.Equal(t, uint(2), reservations[2].ID)
	for _, r := range reservations {
		assert.NotEqual(t, models.BookingStatusCancelled, r.Status)
	}
}
