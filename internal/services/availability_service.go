package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"gorm.io/gorm"
)

// AvailabilityService answers whether a property can take a stay over a
// half-open [checkIn, checkOut) date range. Verdicts are computed fresh per
// call from a snapshot of the property's reservations and are never cached.
type AvailabilityService struct {
	propertyRepo repository.PropertyRepository
	bookingRepo  repository.BookingRepository
	leaseRepo    repository.LeaseRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	propertyRepo repository.PropertyRepository,
	bookingRepo repository.BookingRepository,
	leaseRepo repository.LeaseRepository,
) *AvailabilityService {
	return &AvailabilityService{
		propertyRepo: propertyRepo,
		bookingRepo:  bookingRepo,
		leaseRepo:    leaseRepo,
	}
}

// FindConflicts returns the reservations in the snapshot that block the
// half-open range [start, end), ordered by start date ascending. A
// reservation matching exclude is skipped, so an edited stay does not
// conflict with itself. Callers validate start < end; the snapshot is taken
// as given, the function reads nothing else.
func FindConflicts(snapshot []models.Reservation, start, end time.Time, exclude *models.ReservationRef) []models.Reservation {
	conflicts := make([]models.Reservation, 0)
	for i := range snapshot {
		r := &snapshot[i]
		if r.Matches(exclude) {
			continue
		}
		if !r.BlocksAvailability() {
			continue
		}
		if r.Overlaps(start, end) {
			conflicts = append(conflicts, *r)
		}
	}
	models.SortReservationsByStart(conflicts)
	return conflicts
}

// CheckAvailability checks whether the property is free for the given range
func (s *AvailabilityService) CheckAvailability(ctx context.Context, propertyID uint, checkIn, checkOut time.Time) (*models.AvailabilityVerdict, error) {
	return s.CheckAvailabilityExcluding(ctx, propertyID, checkIn, checkOut, nil)
}

// CheckAvailabilityExcluding is CheckAvailability for edit flows: the
// reservation identified by exclude is left out of the conflict set.
//
// A minimum-stay violation short-circuits before any overlap work and comes
// back as a verdict with a reason, never mixed with scheduling conflicts.
// ErrInvalidRange and ErrNotFound are errors, not verdicts.
func (s *AvailabilityService) CheckAvailabilityExcluding(ctx context.Context, propertyID uint, checkIn, checkOut time.Time, exclude *models.ReservationRef) (*models.AvailabilityVerdict, error) {
	start := models.DateOnly(checkIn)
	end := models.DateOnly(checkOut)

	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error al consultar la propiedad: %w", err)
	}

	nights := models.DaysBetween(start, end)

	// Policy check runs before the overlap scan: a too-short stay is refused
	// as a result even when the dates are free
	if property.MinNights > 0 && nights < property.MinNights {
		return &models.AvailabilityVerdict{
			Available: false,
			Conflicts: []models.ConflictInfo{},
			Reason:    fmt.Sprintf("la estadía mínima para esta propiedad es de %d noches", property.MinNights),
			Nights:    nights,
		}, nil
	}

	snapshot, err := s.Snapshot(ctx, property, start, end)
	if err != nil {
		return nil, err
	}

	conflicts := FindConflicts(snapshot, start, end, exclude)

	verdict := &models.AvailabilityVerdict{
		Available: len(conflicts) == 0,
		Conflicts: make([]models.ConflictInfo, 0, len(conflicts)),
		Nights:    nights,
	}
	for _, c := range conflicts {
		verdict.Conflicts = append(verdict.Conflicts, models.NewConflictInfo(c))
	}
	return verdict, nil
}

// Snapshot loads the reservations sharing the property's overlap space for
// the given range. The rental type gates which kinds participate: short-term
// properties check bookings, long-term check leases, mixed check both.
func (s *AvailabilityService) Snapshot(ctx context.Context, property *models.Property, start, end time.Time) ([]models.Reservation, error) {
	var snapshot []models.Reservation

	if property.AcceptsBookings() {
		bookings, err := s.bookingRepo.FindOverlapping(ctx, property.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("error al consultar reservas: %w", err)
		}
		for i := range bookings {
			snapshot = append(snapshot, bookings[i].ToReservation())
		}
	}

	if property.AcceptsLeases() {
		leases, err := s.leaseRepo.FindOverlapping(ctx, property.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("error al consultar contratos de alquiler: %w", err)
		}
		for i := range leases {
			snapshot = append(snapshot, leases[i].ToReservation())
		}
	}

	return snapshot, nil
}
