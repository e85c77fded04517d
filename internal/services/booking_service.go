package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/jobs"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/Comfie/property-crm-sub000/internal/statemachine"
	"github.com/Comfie/property-crm-sub000/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingService owns the short-term booking lifecycle. Every write that can
// change a property's occupied dates (create, reinstate, date edits) runs
// inside a transaction holding a row lock on the property, so the
// availability verdict it acts on cannot be invalidated by a concurrent
// writer for the same property.
type BookingService struct {
	db              *gorm.DB
	repo            repository.BookingRepository
	occupancySvc    *OccupancyService
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
	pendingHoldDays int
}

func NewBookingService(
	db *gorm.DB,
	repo repository.BookingRepository,
	occupancySvc *OccupancyService,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
	pendingHoldDays int,
) *BookingService {
	return &BookingService{
		db:              db,
		repo:            repo,
		occupancySvc:    occupancySvc,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
		pendingHoldDays: pendingHoldDays,
	}
}

// lockProperty loads the property row FOR UPDATE, serializing writers that
// are about to change its occupied date ranges.
func lockProperty(ctx context.Context, tx *gorm.DB, propertyID uint) (*models.Property, error) {
	var property models.Property
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&property, propertyID).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &property, nil
}

// txAvailability builds an availability checker whose snapshot reads go
// through tx, so a verdict computed under the property row lock stays valid
// until commit.
func txAvailability(tx *gorm.DB) *AvailabilityService {
	return NewAvailabilityService(
		repository.NewPropertyRepository(tx),
		repository.NewBookingRepository(tx),
		repository.NewLeaseRepository(tx),
	)
}

func bookingActor(booking *models.Booking) uint {
	if booking.CreatorID != nil {
		return *booking.CreatorID
	}
	return 0
}

// FindByID gets a booking by ID
func (s *BookingService) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return booking, nil
}

// FindByIDWithDetails gets a booking by ID with property, tenant and creator preloaded
func (s *BookingService) FindByIDWithDetails(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, query *repository.BookingQuery) ([]models.Booking, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *BookingService) FindByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error) {
	return s.repo.FindByProperty(ctx, propertyID)
}

func (s *BookingService) GetStats(ctx context.Context) (*repository.BookingStats, error) {
	return s.repo.GetStats(ctx)
}

// Create validates and persists a new booking request. When the dates
// collide with existing reservations the verdict is returned and nothing is
// written; force skips that refusal for manual overrides, which are audited
// and flagged to the admins.
func (s *BookingService) Create(ctx context.Context, booking *models.Booking, force bool) (*models.AvailabilityVerdict, error) {
	booking.CheckInDate = models.DateOnly(booking.CheckInDate)
	booking.CheckOutDate = models.DateOnly(booking.CheckOutDate)
	if !booking.CheckOutDate.After(booking.CheckInDate) {
		return nil, ErrInvalidRange
	}

	var refused *models.AvailabilityVerdict
	overridden := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		property, err := lockProperty(ctx, tx, booking.PropertyID)
		if err != nil {
			return err
		}
		if !property.AcceptsBookings() {
			return ErrRentalTypeMismatch
		}

		verdict, err := txAvailability(tx).CheckAvailability(ctx, booking.PropertyID, booking.CheckInDate, booking.CheckOutDate)
		if err != nil {
			return err
		}
		if !verdict.Available {
			if !force {
				refused = verdict
				return nil
			}
			overridden = true
		}

		booking.Status = models.BookingStatusPending
		if booking.TotalAmount == 0 {
			booking.TotalAmount = property.DailyRate * float64(booking.Nights())
		}
		booking.Property = property

		return repository.NewBookingRepository(tx).Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	if refused != nil {
		return refused, nil
	}

	s.occupancySvc.InvalidateReports(ctx)

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Nueva reserva",
			fmt.Sprintf("Nueva reserva de %s del %s al %s",
				booking.GuestName,
				booking.CheckInDate.Format(models.DateLayout),
				booking.CheckOutDate.Format(models.DateLayout)),
			models.NotificationTypeBookingCreated)
	})

	if booking.GuestEmail != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.emailSvc.SendBookingCreated(ctx, booking)
		})
	}

	s.auditSvc.Log(ctx, bookingActor(booking), "CREATE", "Booking", booking.ID,
		fmt.Sprintf("Reserva creada para %s del %s al %s. Total: %.2f",
			booking.GuestName,
			booking.CheckInDate.Format(models.DateLayout),
			booking.CheckOutDate.Format(models.DateLayout),
			booking.TotalAmount), "", "")

	if overridden {
		s.auditSvc.Log(ctx, bookingActor(booking), "OVERRIDE", "Booking", booking.ID,
			"Reserva creada sobre fechas en conflicto (anulación manual)", "", "")
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.NotifyAdmins(ctx,
				"Conflicto de reservas",
				fmt.Sprintf("La reserva #%d se creó sobre fechas ya ocupadas", booking.ID),
				models.NotificationTypeBookingConflict)
		})
	}

	return nil, nil
}

// Update persists edits to a booking. Status never changes here, only
// through the transition methods. When the stay moves (new dates or a new
// property) while the booking still blocks availability, the target range is
// re-checked under the property row lock, excluding the booking itself.
func (s *BookingService) Update(ctx context.Context, booking *models.Booking, force bool) (*models.AvailabilityVerdict, error) {
	booking.CheckInDate = models.DateOnly(booking.CheckInDate)
	booking.CheckOutDate = models.DateOnly(booking.CheckOutDate)
	if !booking.CheckOutDate.After(booking.CheckInDate) {
		return nil, ErrInvalidRange
	}

	current, err := s.repo.FindByID(ctx, booking.ID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	// Status and lifecycle timestamps only change through the transition methods
	booking.Status = current.Status
	booking.ConfirmedAt = current.ConfirmedAt
	booking.CancelledAt = current.CancelledAt
	if booking.CreatorID == nil {
		booking.CreatorID = current.CreatorID
	}

	moved := booking.PropertyID != current.PropertyID ||
		!booking.CheckInDate.Equal(models.DateOnly(current.CheckInDate)) ||
		!booking.CheckOutDate.Equal(models.DateOnly(current.CheckOutDate))
	blocks := booking.ToReservation().BlocksAvailability()

	if !moved || !blocks {
		if err := s.repo.Update(ctx, booking); err != nil {
			return nil, err
		}
		s.occupancySvc.InvalidateReports(ctx)
		s.auditSvc.Log(ctx, bookingActor(booking), "UPDATE", "Booking", booking.ID,
			fmt.Sprintf("Reserva #%d actualizada", booking.ID), "", "")
		return nil, nil
	}

	var refused *models.AvailabilityVerdict
	err = s.db.Transaction(func(tx *gorm.DB) error {
		property, err := lockProperty(ctx, tx, booking.PropertyID)
		if err != nil {
			return err
		}
		if !property.AcceptsBookings() {
			return ErrRentalTypeMismatch
		}

		verdict, err := txAvailability(tx).CheckAvailabilityExcluding(ctx, booking.PropertyID,
			booking.CheckInDate, booking.CheckOutDate,
			&models.ReservationRef{Kind: models.ReservationKindBooking, ID: booking.ID})
		if err != nil {
			return err
		}
		if !verdict.Available && !force {
			refused = verdict
			return nil
		}

		return repository.NewBookingRepository(tx).Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	if refused != nil {
		return refused, nil
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, bookingActor(booking), "UPDATE", "Booking", booking.ID,
		fmt.Sprintf("Reserva #%d movida al %s → %s", booking.ID,
			booking.CheckInDate.Format(models.DateLayout),
			booking.CheckOutDate.Format(models.DateLayout)), "", "")
	return nil, nil
}

// Confirm moves a pending booking to confirmed and emails the guest
func (s *BookingService) Confirm(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	bfsm := statemachine.NewBookingFSM(booking)
	if err := bfsm.Confirm(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	now := time.Now()
	booking.ConfirmedAt = &now

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	if booking.GuestEmail != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.emailSvc.SendBookingConfirmed(ctx, booking)
		})
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Reserva confirmada",
			fmt.Sprintf("La reserva #%d de %s fue confirmada", booking.ID, booking.GuestName),
			models.NotificationTypeBookingConfirmed)
	})

	s.auditSvc.Log(ctx, bookingActor(booking), "CONFIRM", "Booking", booking.ID,
		fmt.Sprintf("Reserva #%d confirmada", booking.ID), "", "")

	return booking, nil
}

// CheckIn marks the guest as arrived
func (s *BookingService) CheckIn(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	bfsm := statemachine.NewBookingFSM(booking)
	if err := bfsm.CheckIn(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, bookingActor(booking), "CHECK_IN", "Booking", booking.ID,
		fmt.Sprintf("Check-in de la reserva #%d", booking.ID), "", "")

	return booking, nil
}

// CheckOut marks the stay as finished. The booking stops blocking
// availability but keeps counting for occupancy history.
func (s *BookingService) CheckOut(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	bfsm := statemachine.NewBookingFSM(booking)
	if err := bfsm.CheckOut(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, bookingActor(booking), "CHECK_OUT", "Booking", booking.ID,
		fmt.Sprintf("Check-out de la reserva #%d", booking.ID), "", "")

	return booking, nil
}

// Cancel cancels a pending or confirmed booking, freeing its dates
func (s *BookingService) Cancel(ctx context.Context, id uint, reason string) (*models.Booking, error) {
	booking, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	bfsm := statemachine.NewBookingFSM(booking)
	if err := bfsm.Cancel(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	now := time.Now()
	booking.CancelledAt = &now
	if reason != "" {
		booking.Note = &reason
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.occupancySvc.InvalidateReports(ctx)

	if booking.GuestEmail != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.emailSvc.SendBookingCancelled(ctx, booking, reason)
		})
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Reserva cancelada",
			fmt.Sprintf("La reserva #%d de %s fue cancelada", booking.ID, booking.GuestName),
			models.NotificationTypeBookingCancelled)
	})

	s.auditSvc.Log(ctx, bookingActor(booking), "CANCEL", "Booking", booking.ID,
		fmt.Sprintf("Reserva #%d cancelada. Razón: %s", booking.ID, reason), "", "")

	return booking, nil
}

// MarkNoShow marks a confirmed booking whose guest never arrived. The
// booking stops counting for occupancy and revenue.
func (s *BookingService) MarkNoShow(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	bfsm := statemachine.NewBookingFSM(booking)
	if err := bfsm.MarkNoShow(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, bookingActor(booking), "NO_SHOW", "Booking", booking.ID,
		fmt.Sprintf("Reserva #%d marcada como no show", booking.ID), "", "")

	return booking, nil
}

// Reinstate returns a cancelled booking to pending. The booking re-enters
// the blocking set, so the dates are re-checked under the property row lock
// exactly like a new booking would be.
func (s *BookingService) Reinstate(ctx context.Context, id uint, force bool) (*models.Booking, *models.AvailabilityVerdict, error) {
	var booking *models.Booking
	var refused *models.AvailabilityVerdict

	err := s.db.Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewBookingRepository(tx)
		b, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		if !b.MayReinstate() {
			return fmt.Errorf("%w: la reserva #%d no está cancelada", ErrInvalidState, b.ID)
		}

		if _, err := lockProperty(ctx, tx, b.PropertyID); err != nil {
			return err
		}

		verdict, err := txAvailability(tx).CheckAvailabilityExcluding(ctx, b.PropertyID,
			b.CheckInDate, b.CheckOutDate,
			&models.ReservationRef{Kind: models.ReservationKindBooking, ID: b.ID})
		if err != nil {
			return err
		}
		if !verdict.Available && !force {
			refused = verdict
			return nil
		}

		bfsm := statemachine.NewBookingFSM(b)
		if err := bfsm.Reinstate(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		b.CancelledAt = nil

		if err := txRepo.Update(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if refused != nil {
		return nil, refused, nil
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, bookingActor(booking), "REINSTATE", "Booking", booking.ID,
		fmt.Sprintf("Reserva #%d reactivada", booking.ID), "", "")

	return booking, nil, nil
}

// Delete removes a booking outright. Cancel is the normal path; this exists
// for admin cleanup of bad records.
func (s *BookingService) Delete(ctx context.Context, id uint) error {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, bookingActor(booking), "DELETE", "Booking", booking.ID,
		fmt.Sprintf("Reserva #%d eliminada", booking.ID), "", "")
	return nil
}

// ReleaseStalePending cancels pending bookings that were never confirmed
// within the hold window, freeing their dates for other guests. Runs from
// the scheduler.
func (s *BookingService) ReleaseStalePending(ctx context.Context) error {
	stale, err := s.repo.FindStalePending(ctx, s.pendingHoldDays)
	if err != nil {
		return err
	}

	released := 0
	for i := range stale {
		if _, err := s.Cancel(ctx, stale[i].ID, "Reserva liberada automáticamente por falta de confirmación"); err != nil {
			logger.Warn(fmt.Sprintf("Failed to release stale booking %d: %v", stale[i].ID, err))
			continue
		}
		released++
	}

	if released > 0 {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.NotifyAdmins(ctx,
				"Reservas liberadas",
				fmt.Sprintf("Se liberaron %d reservas pendientes sin confirmar", released),
				models.NotificationTypeBookingStale)
		})
	}
	return nil
}
