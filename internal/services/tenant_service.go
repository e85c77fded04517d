package services

import (
	"context"
	"fmt"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
)

type TenantService struct {
	repo     repository.TenantRepository
	auditSvc *AuditService
}

func NewTenantService(repo repository.TenantRepository, auditSvc *AuditService) *TenantService {
	return &TenantService{repo: repo, auditSvc: auditSvc}
}

func (s *TenantService) FindByID(ctx context.Context, id uint) (*models.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return tenant, nil
}

func (s *TenantService) FindByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	tenant, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return tenant, nil
}

func (s *TenantService) List(ctx context.Context, query *repository.ListQuery) ([]models.Tenant, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *TenantService) Create(ctx context.Context, tenant *models.Tenant, actorID uint) error {
	if err := s.repo.Create(ctx, tenant); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actorID, "CREATE", "Tenant", tenant.ID,
		fmt.Sprintf("Inquilino %s creado", tenant.FullName), "", "")
	return nil
}

// Update persists edits, preserving fields the caller left unset
func (s *TenantService) Update(ctx context.Context, tenant *models.Tenant, actorID uint) error {
	existing, err := s.repo.FindByID(ctx, tenant.ID)
	if err != nil {
		return mapNotFound(err)
	}

	if tenant.Status == "" {
		tenant.Status = existing.Status
	}
	if tenant.Email == nil {
		tenant.Email = existing.Email
	}
	if tenant.Phone == nil {
		tenant.Phone = existing.Phone
	}
	if tenant.Identity == nil {
		tenant.Identity = existing.Identity
	}
	if tenant.UserID == nil {
		tenant.UserID = existing.UserID
	}
	if tenant.Note == nil {
		tenant.Note = existing.Note
	}
	tenant.DiscardedAt = existing.DiscardedAt

	if err := s.repo.Update(ctx, tenant); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actorID, "UPDATE", "Tenant", tenant.ID,
		fmt.Sprintf("Inquilino %s actualizado", tenant.FullName), "", "")
	return nil
}

// SoftDelete discards the tenant while keeping their booking and lease
// history intact
func (s *TenantService) SoftDelete(ctx context.Context, id uint, actorID uint) error {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actorID, "DELETE", "Tenant", tenant.ID,
		fmt.Sprintf("Inquilino %s descartado", tenant.FullName), "", "")
	return nil
}

// Restore brings back a discarded tenant
func (s *TenantService) Restore(ctx context.Context, id uint, actorID uint) error {
	if err := s.repo.Restore(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actorID, "RESTORE", "Tenant", id, "Inquilino restaurado", "", "")
	return nil
}
