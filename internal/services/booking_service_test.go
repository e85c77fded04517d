package services

import (
	"context"
	"testing"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/config"
	"github.com/Comfie/property-crm-sub000/internal/jobs"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

// bookingFixture wires a BookingService over mocks. The db stays nil, so only
// the lifecycle paths that do not open transactions are exercised here.
type bookingFixture struct {
	svc       *BookingService
	repo      *mockBookingRepo
	notifRepo *mockNotificationRepo
	auditRepo *mockAuditLogRepo
	cache     *mockReportCache
	worker    *jobs.Worker
}

func newBookingFixture() *bookingFixture {
	repo := &mockBookingRepo{}
	cache := &mockReportCache{}
	notifRepo := &mockNotificationRepo{}
	auditRepo := &mockAuditLogRepo{}

	userRepo := &mockUserRepo{}
	userRepo.mockFindAdmins = func(ctx context.Context) ([]models.User, error) {
		return []models.User{{ID: 1}, {ID: 2}}, nil
	}

	occupancySvc := NewOccupancyService(&mockPropertyRepo{}, &mockBookingRepo{}, &mockLeaseRepo{}, cache, time.Minute)
	notificationSvc := NewNotificationService(notifRepo, userRepo)
	emailSvc := NewEmailService(&config.Config{})
	auditSvc := NewAuditService(auditRepo)
	worker := jobs.NewWorker(0)

	svc := NewBookingService(nil, repo, occupancySvc, notificationSvc, emailSvc, auditSvc, worker, 3)
	return &bookingFixture{svc: svc, repo: repo, notifRepo: notifRepo, auditRepo: auditRepo, cache: cache, worker: worker}
}

func pendingBooking(id uint) *models.Booking {
	return &models.Booking{
		ID:           id,
		PropertyID:   4,
		GuestName:    "Ana Castro",
		CheckInDate:  day(2026, 3, 10),
		CheckOutDate: day(2026, 3, 14),
		Status:       models.BookingStatusPending,
	}
}

func TestBookingService_Confirm(t *testing.T) {
	f := newBookingFixture()
	defer f.worker.Shutdown()

	// 1. Setup a pending booking and capture the persisted update
	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Booking, error) {
		return pendingBooking(id), nil
	}
	var updated *models.Booking
	f.repo.mockUpdate = func(ctx context.Context, booking *models.Booking) error {
		updated = booking
		return nil
	}

	// 2. Confirm it
	booking, err := f.svc.Confirm(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.NotNil(t, booking.ConfirmedAt)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)
	assert.Contains(t, f.auditRepo.actions(), "CONFIRM")

	// 3. The admin fan-out runs async; one notification per admin
	time.Sleep(100 * time.Millisecond)
	created := f.notifRepo.all()
	assert.Len(t, created, 2)
	assert.Equal(t, models.NotificationTypeBookingConfirmed, *created[0].NotificationType)
}

func TestBookingService_Confirm_InvalidState(t *testing.T) {
	f := newBookingFixture()
	defer f.worker.Shutdown()

	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Booking, error) {
		b := pendingBooking(id)
		b.Status = models.BookingStatusCheckedIn
		return b, nil
	}
	updateCalled := false
	f.repo.mockUpdate = func(ctx context.Context, booking *models.Booking) error {
		updateCalled = true
		return nil
	}

	_, err := f.svc.Confirm(context.Background(), 7)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, updateCalled)
}

func TestBookingService_Cancel(t *testing.T) {
	f := newBookingFixture()
	defer f.worker.Shutdown()

	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Booking, error) {
		b := pendingBooking(id)
		b.Status = models.BookingStatusConfirmed
		return b, nil
	}

	booking, err := f.svc.Cancel(context.Background(), 7, "Cliente canceló")
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)
	assert.NotNil(t, booking.CancelledAt)
	assert.Equal(t, "Cliente canceló", *booking.Note)

	// Freed dates stale any cached occupancy
	assert.Equal(t, 1, f.cache.invalidations())
	assert.Contains(t, f.auditRepo.actions(), "CANCEL")
}

func TestBookingService_CheckInThenOut(t *testing.T) {
	f := newBookingFixture()
	defer f.worker.Shutdown()

	current := pendingBooking(7)
	current.Status = models.BookingStatusConfirmed
	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Booking, error) {
		return current, nil
	}

	booking, err := f.svc.CheckIn(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedIn, booking.Status)
	// Check-in does not change occupied dates, nothing to invalidate
	assert.Equal(t, 0, f.cache.invalidations())

	booking, err = f.svc.CheckOut(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedOut, booking.Status)
	// Checkout releases the dates for new requests
	assert.Equal(t, 1, f.cache.invalidations())
}

func TestBookingService_MarkNoShow(t *testing.T) {
	f := newBookingFixture()
	defer f.worker.Shutdown()

	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Booking, error) {
		b := pendingBooking(id)
		b.Status = models.BookingStatusConfirmed
		return b, nil
	}

	booking, err := f.svc.MarkNoShow(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusNoShow, booking.Status)

	// Only confirmed bookings may be marked, not pending ones
	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Booking, error) {
		return pendingBooking(id), nil
	}
	_, err = f.svc.MarkNoShow(context.Background(), 8)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBookingService_ReleaseStalePending(t *testing.T) {
	f := newBookingFixture()
	defer f.worker.Shutdown()

	// 1. Two pending bookings sat unconfirmed past the hold window
	var gotHoldDays int
	f.repo.mockFindStalePending = func(ctx context.Context, olderThanDays int) ([]models.Booking, error) {
		gotHoldDays = olderThanDays
		return []models.Booking{*pendingBooking(21), *pendingBooking(22)}, nil
	}
	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Booking, error) {
		return pendingBooking(id), nil
	}

	var released []models.Booking
	f.repo.mockUpdate = func(ctx context.Context, booking *models.Booking) error {
		released = append(released, *booking)
		return nil
	}

	// 2. Run the scheduled job body
	err := f.svc.ReleaseStalePending(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, gotHoldDays)

	assert.Len(t, released, 2)
	for _, b := range released {
		assert.Equal(t, models.BookingStatusCancelled, b.Status)
		assert.Equal(t, "Reserva liberada automáticamente por falta de confirmación", *b.Note)
	}

	// 3. Admins hear about the sweep: 2 cancellations + 1 summary, fanned out
	// to 2 admins each
	time.Sleep(100 * time.Millisecond)
	summaries := 0
	for _, n := range f.notifRepo.all() {
		if n.NotificationType != nil && *n.NotificationType == models.NotificationTypeBookingStale {
			summaries++
			assert.Contains(t, n.Message, "2")
		}
	}
	assert.Equal(t, 2, summaries)
}

func TestBookingService_FindByID_NotFound(t *testing.T) {
	f := newBookingFixture()
	defer f.worker.Shutdown()

	// Default mock finds nothing
	_, err := f.svc.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
