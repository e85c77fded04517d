package services

import (
	"context"
	"testing"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func shortTermProperty(id uint) *models.Property {
	return &models.Property{
		ID:         id,
		Name:       "Casa Marina",
		RentalType: models.RentalTypeShortTerm,
		MinNights:  1,
		Status:     models.PropertyStatusActive,
	}
}

func TestCheckAvailability_FreeDates(t *testing.T) {
	// 1. Property exists, one booking ends exactly on the requested check-in
	propertyRepo := &mockPropertyRepo{}
	propertyRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Property, error) {
		return shortTermProperty(id), nil
	}

	bookingRepo := &mockBookingRepo{}
	bookingRepo.mockFindOverlapping = func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 1, PropertyID: propertyID, CheckInDate: day(2026, 3, 6), CheckOutDate: day(2026, 3, 10), Status: models.BookingStatusConfirmed},
		}, nil
	}

	service := NewAvailabilityService(propertyRepo, bookingRepo, &mockLeaseRepo{})

	// 2. Same-day turnover: the prior guest checks out the morning the new
	// one arrives
	verdict, err := service.CheckAvailability(context.Background(), 4, day(2026, 3, 10), day(2026, 3, 14))
	assert.NoError(t, err)
	assert.True(t, verdict.Available)
	assert.NotNil(t, verdict.Conflicts) // serializes as [], not null
	assert.Len(t, verdict.Conflicts, 0)
	assert.Equal(t, 4, verdict.Nights)
	assert.Empty(t, verdict.Reason)

	// 3. Checking again returns the same answer, nothing was consumed
	again, err := service.CheckAvailability(context.Background(), 4, day(2026, 3, 10), day(2026, 3, 14))
	assert.NoError(t, err)
	assert.Equal(t, verdict, again)
}

func TestCheckAvailability_Conflicts(t *testing.T) {
	propertyRepo := &mockPropertyRepo{}
	propertyRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Property, error) {
		return shortTermProperty(id), nil
	}

	// 1. Two blocking stays overlap the requested range, a cancelled one sits
	// right on top of it
	bookingRepo := &mockBookingRepo{}
	bookingRepo.mockFindOverlapping = func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 2, GuestName: "Luis Paz", CheckInDate: day(2026, 3, 12), CheckOutDate: day(2026, 3, 16), Status: models.BookingStatusConfirmed},
			{ID: 1, GuestName: "Ana Castro", CheckInDate: day(2026, 3, 8), CheckOutDate: day(2026, 3, 11), Status: models.BookingStatusPending},
			{ID: 3, GuestName: "Marta López", CheckInDate: day(2026, 3, 10), CheckOutDate: day(2026, 3, 12), Status: models.BookingStatusCancelled},
		}, nil
	}

	service := NewAvailabilityService(propertyRepo, bookingRepo, &mockLeaseRepo{})

	verdict, err := service.CheckAvailability(context.Background(), 4, day(2026, 3, 10), day(2026, 3, 14))
	assert.NoError(t, err)
	assert.False(t, verdict.Available)

	// 2. The cancelled stay no longer holds the dates; survivors come back
	// ordered by start date
	assert.Len(t, verdict.Conflicts, 2)
	assert.Equal(t, uint(1), verdict.Conflicts[0].ID)
	assert.Equal(t, "2026-03-08", verdict.Conflicts[0].CheckInDate)
	assert.Equal(t, uint(2), verdict.Conflicts[1].ID)
	assert.Equal(t, "Luis Paz", verdict.Conflicts[1].GuestName)
}

func TestCheckAvailability_MixedPropertySeesLeases(t *testing.T) {
	// A property rented both ways shares one overlap space: an active lease
	// blocks a booking request
	propertyRepo := &mockPropertyRepo{}
	propertyRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Property, error) {
		p := shortTermProperty(id)
		p.RentalType = models.RentalTypeBoth
		return p, nil
	}

	leaseRepo := &mockLeaseRepo{}
	leaseRepo.mockFindOverlapping = func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Lease, error) {
		return []models.Lease{
			{ID: 5, PropertyID: propertyID, StartDate: day(2026, 3, 1), EndDate: day(2026, 4, 1), Status: models.LeaseStatusActive, Tenant: &models.Tenant{FullName: "Rosa Díaz"}},
		}, nil
	}

	service := NewAvailabilityService(propertyRepo, &mockBookingRepo{}, leaseRepo)

	verdict, err := service.CheckAvailability(context.Background(), 4, day(2026, 3, 10), day(2026, 3, 14))
	assert.NoError(t, err)
	assert.False(t, verdict.Available)
	assert.Len(t, verdict.Conflicts, 1)
	assert.Equal(t, models.ReservationKindLease, verdict.Conflicts[0].Kind)
	assert.Equal(t, "Rosa Díaz", verdict.Conflicts[0].GuestName)
}

func TestCheckAvailability_LongTermSkipsBookings(t *testing.T) {
	propertyRepo := &mockPropertyRepo{}
	propertyRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Property, error) {
		p := shortTermProperty(id)
		p.RentalType = models.RentalTypeLongTerm
		return p, nil
	}

	// The booking side must not be consulted for a long-term property
	bookingRepo := &mockBookingRepo{}
	bookingQueried := false
	bookingRepo.mockFindOverlapping = func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
		bookingQueried = true
		return nil, nil
	}

	service := NewAvailabilityService(propertyRepo, bookingRepo, &mockLeaseRepo{})

	verdict, err := service.CheckAvailability(context.Background(), 4, day(2026, 3, 10), day(2026, 3, 14))
	assert.NoError(t, err)
	assert.True(t, verdict.Available)
	assert.False(t, bookingQueried)
}

func TestCheckAvailability_MinimumStay(t *testing.T) {
	propertyRepo := &mockPropertyRepo{}
	propertyRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Property, error) {
		p := shortTermProperty(id)
		p.MinNights = 3
		return p, nil
	}

	// The policy check runs first, so the overlap space is never loaded
	bookingRepo := &mockBookingRepo{}
	bookingQueried := false
	bookingRepo.mockFindOverlapping = func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
		bookingQueried = true
		return nil, nil
	}

	service := NewAvailabilityService(propertyRepo, bookingRepo, &mockLeaseRepo{})

	verdict, err := service.CheckAvailability(context.Background(), 4, day(2026, 3, 10), day(2026, 3, 12))
	assert.NoError(t, err)
	assert.False(t, verdict.Available)
	assert.Equal(t, "la estadía mínima para esta propiedad es de 3 noches", verdict.Reason)
	assert.Len(t, verdict.Conflicts, 0)
	assert.Equal(t, 2, verdict.Nights)
	assert.False(t, bookingQueried)
}

func TestCheckAvailability_InvalidRange(t *testing.T) {
	service := NewAvailabilityService(&mockPropertyRepo{}, &mockBookingRepo{}, &mockLeaseRepo{})

	_, err := service.CheckAvailability(context.Background(), 4, day(2026, 3, 10), day(2026, 3, 10))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = service.CheckAvailability(context.Background(), 4, day(2026, 3, 14), day(2026, 3, 10))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCheckAvailability_UnknownProperty(t *testing.T) {
	// Default property mock finds nothing
	service := NewAvailabilityService(&mockPropertyRepo{}, &mockBookingRepo{}, &mockLeaseRepo{})

	_, err := service.CheckAvailability(context.Background(), 99, day(2026, 3, 10), day(2026, 3, 14))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckAvailabilityExcluding_SelfExclusion(t *testing.T) {
	propertyRepo := &mockPropertyRepo{}
	propertyRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Property, error) {
		return shortTermProperty(id), nil
	}

	bookingRepo := &mockBookingRepo{}
	bookingRepo.mockFindOverlapping = func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 7, PropertyID: propertyID, CheckInDate: day(2026, 3, 10), CheckOutDate: day(2026, 3, 14), Status: models.BookingStatusConfirmed},
		}, nil
	}

	service := NewAvailabilityService(propertyRepo, bookingRepo, &mockLeaseRepo{})

	// 1. Editing booking #7 over its own dates does not collide with itself
	verdict, err := service.CheckAvailabilityExcluding(context.Background(), 4,
		day(2026, 3, 10), day(2026, 3, 14),
		&models.ReservationRef{Kind: models.ReservationKindBooking, ID: 7})
	assert.NoError(t, err)
	assert.True(t, verdict.Available)

	// 2. A lease with the same numeric id is a different reservation
	verdict, err = service.CheckAvailabilityExcluding(context.Background(), 4,
		day(2026, 3, 10), day(2026, 3, 14),
		&models.ReservationRef{Kind: models.ReservationKindLease, ID: 7})
	assert.NoError(t, err)
	assert.False(t, verdict.Available)
}

func TestFindConflicts(t *testing.T) {
	snapshot := []models.Reservation{
		{ID: 3, Kind: models.ReservationKindBooking, StartDate: day(2026, 3, 12), EndDate: day(2026, 3, 16), Status: models.BookingStatusConfirmed},
		{ID: 1, Kind: models.ReservationKindBooking, StartDate: day(2026, 3, 8), EndDate: day(2026, 3, 11), Status: models.BookingStatusPending},
		{ID: 2, Kind: models.ReservationKindBooking, StartDate: day(2026, 3, 9), EndDate: day(2026, 3, 13), Status: models.BookingStatusNoShow},
		{ID: 4, Kind: models.ReservationKindLease, StartDate: day(2026, 3, 1), EndDate: day(2026, 3, 9), Status: models.LeaseStatusActive},
	}

	// No-show does not block; the lease ends before the range opens
	conflicts := FindConflicts(snapshot, day(2026, 3, 10), day(2026, 3, 14), nil)
	assert.Len(t, conflicts, 2)
	assert.Equal(t, uint(1), conflicts[0].ID)
	assert.Equal(t, uint(3), conflicts[1].ID)

	// Excluding the edited stay leaves only the other one
	conflicts = FindConflicts(snapshot, day(2026, 3, 10), day(2026, 3, 14),
		&models.ReservationRef{Kind: models.ReservationKindBooking, ID: 1})
	assert.Len(t, conflicts, 1)
	assert.Equal(t, uint(3), conflicts[0].ID)

	// An empty snapshot yields an empty, non-nil slice
	conflicts = FindConflicts(nil, day(2026, 3, 10), day(2026, 3, 14), nil)
	assert.NotNil(t, conflicts)
	assert.Len(t, conflicts, 0)
}
