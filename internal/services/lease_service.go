package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/jobs"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/Comfie/property-crm-sub000/internal/statemachine"
	"gorm.io/gorm"
)

// LeaseService owns the long-term lease lifecycle. Leases share the overlap
// space with bookings on properties rented both ways, so creation and date
// edits take the same property row lock the booking side does.
type LeaseService struct {
	db              *gorm.DB
	repo            repository.LeaseRepository
	tenantRepo      repository.TenantRepository
	occupancySvc    *OccupancyService
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewLeaseService(
	db *gorm.DB,
	repo repository.LeaseRepository,
	tenantRepo repository.TenantRepository,
	occupancySvc *OccupancyService,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *LeaseService {
	return &LeaseService{
		db:              db,
		repo:            repo,
		tenantRepo:      tenantRepo,
		occupancySvc:    occupancySvc,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func leaseActor(lease *models.Lease) uint {
	if lease.CreatorID != nil {
		return *lease.CreatorID
	}
	return 0
}

// FindByID gets a lease by ID
func (s *LeaseService) FindByID(ctx context.Context, id uint) (*models.Lease, error) {
	lease, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return lease, nil
}

// FindByIDWithDetails gets a lease by ID with property, tenant and creator preloaded
func (s *LeaseService) FindByIDWithDetails(ctx context.Context, id uint) (*models.Lease, error) {
	lease, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return lease, nil
}

func (s *LeaseService) List(ctx context.Context, query *repository.LeaseQuery) ([]models.Lease, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *LeaseService) FindByProperty(ctx context.Context, propertyID uint) ([]models.Lease, error) {
	return s.repo.FindByProperty(ctx, propertyID)
}

func (s *LeaseService) FindByTenant(ctx context.Context, tenantID uint) ([]models.Lease, error) {
	return s.repo.FindByTenant(ctx, tenantID)
}

// Create validates and persists a new lease. The date range is checked
// against the property's shared overlap space (bookings included when the
// property rents both ways) under the property row lock; conflicts come back
// as a verdict and nothing is written unless force is set.
func (s *LeaseService) Create(ctx context.Context, lease *models.Lease, force bool) (*models.AvailabilityVerdict, error) {
	lease.StartDate = models.DateOnly(lease.StartDate)
	lease.EndDate = models.DateOnly(lease.EndDate)
	if !lease.EndDate.After(lease.StartDate) {
		return nil, ErrInvalidRange
	}

	tenant, err := s.tenantRepo.FindByID(ctx, lease.TenantID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	var refused *models.AvailabilityVerdict
	overridden := false

	err = s.db.Transaction(func(tx *gorm.DB) error {
		property, err := lockProperty(ctx, tx, lease.PropertyID)
		if err != nil {
			return err
		}
		if !property.AcceptsLeases() {
			return ErrRentalTypeMismatch
		}

		verdict, err := txAvailability(tx).CheckAvailability(ctx, lease.PropertyID, lease.StartDate, lease.EndDate)
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

		lease.Status = models.LeaseStatusActive
		if lease.MonthlyRent == 0 {
			lease.MonthlyRent = property.MonthlyRent
		}
		lease.Property = property

		return repository.NewLeaseRepository(tx).Create(ctx, lease)
	})
	if err != nil {
		return nil, err
	}
	if refused != nil {
		return refused, nil
	}
	lease.Tenant = tenant

	s.occupancySvc.InvalidateReports(ctx)

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Nuevo contrato de alquiler",
			fmt.Sprintf("Contrato de alquiler para %s del %s al %s",
				tenant.FullName,
				lease.StartDate.Format(models.DateLayout),
				lease.EndDate.Format(models.DateLayout)),
			models.NotificationTypeLeaseCreated)
	})

	if tenant.Email != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.emailSvc.SendLeaseCreated(ctx, lease)
		})
	}

	s.auditSvc.Log(ctx, leaseActor(lease), "CREATE", "Lease", lease.ID,
		fmt.Sprintf("Contrato de alquiler creado para %s del %s al %s. Renta mensual: %.2f",
			tenant.FullName,
			lease.StartDate.Format(models.DateLayout),
			lease.EndDate.Format(models.DateLayout),
			lease.MonthlyRent), "", "")

	if overridden {
		s.auditSvc.Log(ctx, leaseActor(lease), "OVERRIDE", "Lease", lease.ID,
			"Contrato de alquiler creado sobre fechas en conflicto (anulación manual)", "", "")
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.NotifyAdmins(ctx,
				"Conflicto de reservas",
				fmt.Sprintf("El contrato de alquiler #%d se creó sobre fechas ya ocupadas", lease.ID),
				models.NotificationTypeBookingConflict)
		})
	}

	return nil, nil
}

// Update persists edits to a lease. Status never changes here, only through
// Terminate and Expire. A moved date range on an active lease is re-checked
// under the property row lock, excluding the lease itself.
func (s *LeaseService) Update(ctx context.Context, lease *models.Lease, force bool) (*models.AvailabilityVerdict, error) {
	lease.StartDate = models.DateOnly(lease.StartDate)
	lease.EndDate = models.DateOnly(lease.EndDate)
	if !lease.EndDate.After(lease.StartDate) {
		return nil, ErrInvalidRange
	}

	current, err := s.repo.FindByID(ctx, lease.ID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	// Status, the termination timestamp and the attached document only change
	// through their dedicated operations
	lease.Status = current.Status
	lease.TerminatedAt = current.TerminatedAt
	if lease.DocumentPath == nil {
		lease.DocumentPath = current.DocumentPath
	}
	if lease.CreatorID == nil {
		lease.CreatorID = current.CreatorID
	}

	moved := lease.PropertyID != current.PropertyID ||
		!lease.StartDate.Equal(models.DateOnly(current.StartDate)) ||
		!lease.EndDate.Equal(models.DateOnly(current.EndDate))

	if !moved || lease.Status != models.LeaseStatusActive {
		if err := s.repo.Update(ctx, lease); err != nil {
			return nil, err
		}
		s.occupancySvc.InvalidateReports(ctx)
		s.auditSvc.Log(ctx, leaseActor(lease), "UPDATE", "Lease", lease.ID,
			fmt.Sprintf("Contrato de alquiler #%d actualizado", lease.ID), "", "")
		return nil, nil
	}

	var refused *models.AvailabilityVerdict
	err = s.db.Transaction(func(tx *gorm.DB) error {
		property, err := lockProperty(ctx, tx, lease.PropertyID)
		if err != nil {
			return err
		}
		if !property.AcceptsLeases() {
			return ErrRentalTypeMismatch
		}

		verdict, err := txAvailability(tx).CheckAvailabilityExcluding(ctx, lease.PropertyID,
			lease.StartDate, lease.EndDate,
			&models.ReservationRef{Kind: models.ReservationKindLease, ID: lease.ID})
		if err != nil {
			return err
		}
		if !verdict.Available && !force {
			refused = verdict
			return nil
		}

		return repository.NewLeaseRepository(tx).Update(ctx, lease)
	})
	if err != nil {
		return nil, err
	}
	if refused != nil {
		return refused, nil
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, leaseActor(lease), "UPDATE", "Lease", lease.ID,
		fmt.Sprintf("Contrato de alquiler #%d movido al %s → %s", lease.ID,
			lease.StartDate.Format(models.DateLayout),
			lease.EndDate.Format(models.DateLayout)), "", "")
	return nil, nil
}

// Terminate ends an active lease early. The end date is pulled back to
// today so occupancy history stops counting days the tenant never used, and
// the freed dates open up immediately.
func (s *LeaseService) Terminate(ctx context.Context, id uint, reason string) (*models.Lease, error) {
	lease, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	lfsm := statemachine.NewLeaseFSM(lease)
	if err := lfsm.Terminate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	now := time.Now()
	lease.TerminatedAt = &now
	if reason != "" {
		lease.Note = &reason
	}

	today := models.DateOnly(now)
	if today.Before(lease.EndDate) {
		lease.EndDate = today
		if lease.EndDate.Before(lease.StartDate) {
			lease.EndDate = lease.StartDate
		}
	}

	if err := s.repo.Update(ctx, lease); err != nil {
		return nil, err
	}

	s.occupancySvc.InvalidateReports(ctx)

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Contrato de alquiler terminado",
			fmt.Sprintf("El contrato de alquiler #%d fue terminado anticipadamente", lease.ID),
			models.NotificationTypeLeaseTerminated)
	})

	s.auditSvc.Log(ctx, leaseActor(lease), "TERMINATE", "Lease", lease.ID,
		fmt.Sprintf("Contrato de alquiler #%d terminado. Razón: %s", lease.ID, reason), "", "")

	return lease, nil
}

// Expire rolls an active lease past its end date into expired
func (s *LeaseService) Expire(ctx context.Context, id uint) (*models.Lease, error) {
	lease, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	lfsm := statemachine.NewLeaseFSM(lease)
	if err := lfsm.Expire(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.Update(ctx, lease); err != nil {
		return nil, err
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, leaseActor(lease), "EXPIRE", "Lease", lease.ID,
		fmt.Sprintf("Contrato de alquiler #%d expirado", lease.ID), "", "")

	return lease, nil
}

// AttachDocument stores the path of the uploaded signed agreement
func (s *LeaseService) AttachDocument(ctx context.Context, id uint, path string) (*models.Lease, error) {
	lease, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	lease.DocumentPath = &path

	if err := s.repo.Update(ctx, lease); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, leaseActor(lease), "UPDATE", "Lease", lease.ID,
		"Documento del contrato de alquiler adjuntado", "", "")
	return lease, nil
}

// Delete removes a lease outright, for admin cleanup of bad records
func (s *LeaseService) Delete(ctx context.Context, id uint) error {
	lease, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, leaseActor(lease), "DELETE", "Lease", lease.ID,
		fmt.Sprintf("Contrato de alquiler #%d eliminado", lease.ID), "", "")
	return nil
}

// NotifyExpiring flags active leases that have reached their end date. Staff
// decide whether to renew, expire or terminate; nothing changes state here.
// Runs daily from the scheduler.
func (s *LeaseService) NotifyExpiring(ctx context.Context) error {
	leases, err := s.repo.FindExpiring(ctx, time.Now())
	if err != nil {
		return err
	}
	if len(leases) == 0 {
		return nil
	}

	return s.notificationSvc.NotifyAdmins(ctx,
		"Contratos de alquiler vencidos",
		fmt.Sprintf("%d contratos de alquiler activos llegaron a su fecha de fin", len(leases)),
		models.NotificationTypeLeaseExpiring)
}
