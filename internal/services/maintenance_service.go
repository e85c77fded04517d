package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/jobs"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
)

// MaintenanceService tracks repair work through its status walk:
// open → in_progress → resolved → closed.
type MaintenanceService struct {
	repo            repository.MaintenanceRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewMaintenanceService(
	repo repository.MaintenanceRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *MaintenanceService {
	return &MaintenanceService{
		repo:            repo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func maintenanceActor(request *models.MaintenanceRequest) uint {
	if request.ReporterID != nil {
		return *request.ReporterID
	}
	return 0
}

func (s *MaintenanceService) FindByID(ctx context.Context, id uint) (*models.MaintenanceRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return request, nil
}

func (s *MaintenanceService) List(ctx context.Context, query *repository.ListQuery) ([]models.MaintenanceRequest, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *MaintenanceService) FindByProperty(ctx context.Context, propertyID uint) ([]models.MaintenanceRequest, error) {
	return s.repo.FindByProperty(ctx, propertyID)
}

func (s *MaintenanceService) CountOpenByProperty(ctx context.Context, propertyID uint) (int64, error) {
	return s.repo.CountOpenByProperty(ctx, propertyID)
}

func (s *MaintenanceService) Create(ctx context.Context, request *models.MaintenanceRequest) error {
	if err := s.repo.Create(ctx, request); err != nil {
		return err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Nueva solicitud de mantenimiento",
			fmt.Sprintf("Solicitud de mantenimiento: %s (prioridad %s)", request.Title, request.Priority),
			models.NotificationTypeMaintenanceUpdated)
	})

	s.auditSvc.Log(ctx, maintenanceActor(request), "CREATE", "MaintenanceRequest", request.ID,
		fmt.Sprintf("Solicitud de mantenimiento creada: %s", request.Title), "", "")
	return nil
}

// Update persists edits to title, description, priority and cost. Status
// moves only through Start, Resolve and Close.
func (s *MaintenanceService) Update(ctx context.Context, request *models.MaintenanceRequest, actorID uint) error {
	existing, err := s.repo.FindByID(ctx, request.ID)
	if err != nil {
		return mapNotFound(err)
	}

	request.Status = existing.Status
	request.ResolvedAt = existing.ResolvedAt
	if request.Priority == "" {
		request.Priority = existing.Priority
	}
	if request.Description == nil {
		request.Description = existing.Description
	}
	if request.TenantID == nil {
		request.TenantID = existing.TenantID
	}
	if request.ReporterID == nil {
		request.ReporterID = existing.ReporterID
	}
	if request.AssigneeID == nil {
		request.AssigneeID = existing.AssigneeID
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actorID, "UPDATE", "MaintenanceRequest", request.ID,
		fmt.Sprintf("Solicitud de mantenimiento #%d actualizada", request.ID), "", "")
	return nil
}

// Start moves an open request to in_progress, optionally assigning it
func (s *MaintenanceService) Start(ctx context.Context, id uint, assigneeID *uint, actorID uint) (*models.MaintenanceRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !request.MayStart() {
		return nil, fmt.Errorf("%w: la solicitud #%d no está abierta", ErrInvalidState, request.ID)
	}

	request.Status = models.MaintenanceStatusInProgress
	if assigneeID != nil {
		request.AssigneeID = assigneeID
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	if request.AssigneeID != nil {
		assignee := *request.AssigneeID
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.NotifyUser(ctx, assignee,
				"Mantenimiento asignado",
				fmt.Sprintf("Se te asignó la solicitud de mantenimiento: %s", request.Title),
				models.NotificationTypeMaintenanceUpdated)
		})
	}

	s.auditSvc.Log(ctx, actorID, "START", "MaintenanceRequest", request.ID,
		fmt.Sprintf("Solicitud de mantenimiento #%d en progreso", request.ID), "", "")
	return request, nil
}

// Resolve marks the work as done, recording the final cost
func (s *MaintenanceService) Resolve(ctx context.Context, id uint, cost float64, actorID uint) (*models.MaintenanceRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !request.MayResolve() {
		return nil, fmt.Errorf("%w: la solicitud #%d no está abierta ni en progreso", ErrInvalidState, request.ID)
	}

	now := time.Now()
	request.Status = models.MaintenanceStatusResolved
	request.ResolvedAt = &now
	if cost > 0 {
		request.Cost = cost
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Mantenimiento resuelto",
			fmt.Sprintf("La solicitud %s fue resuelta. Costo: %.2f", request.Title, request.Cost),
			models.NotificationTypeMaintenanceUpdated)
	})

	s.auditSvc.Log(ctx, actorID, "RESOLVE", "MaintenanceRequest", request.ID,
		fmt.Sprintf("Solicitud de mantenimiento #%d resuelta. Costo: %.2f", request.ID, request.Cost), "", "")
	return request, nil
}

// Close archives a resolved request
func (s *MaintenanceService) Close(ctx context.Context, id uint, actorID uint) (*models.MaintenanceRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !request.MayClose() {
		return nil, fmt.Errorf("%w: la solicitud #%d no está resuelta", ErrInvalidState, request.ID)
	}

	request.Status = models.MaintenanceStatusClosed

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "CLOSE", "MaintenanceRequest", request.ID,
		fmt.Sprintf("Solicitud de mantenimiento #%d cerrada", request.ID), "", "")
	return request, nil
}

func (s *MaintenanceService) Delete(ctx context.Context, id uint, actorID uint) error {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actorID, "DELETE", "MaintenanceRequest", request.ID,
		fmt.Sprintf("Solicitud de mantenimiento #%d eliminada", request.ID), "", "")
	return nil
}
