package services

import (
	"context"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
)

// MessageService keeps notes sent to tenants on file. No delivery happens
// here, the record is the product.
type MessageService struct {
	repo       repository.MessageRepository
	tenantRepo repository.TenantRepository
}

func NewMessageService(repo repository.MessageRepository, tenantRepo repository.TenantRepository) *MessageService {
	return &MessageService{repo: repo, tenantRepo: tenantRepo}
}

func (s *MessageService) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return message, nil
}

func (s *MessageService) FindByTenant(ctx context.Context, tenantID uint, query *repository.ListQuery) ([]models.Message, int64, error) {
	if _, err := s.tenantRepo.FindByID(ctx, tenantID); err != nil {
		return nil, 0, mapNotFound(err)
	}
	return s.repo.FindByTenant(ctx, tenantID, query)
}

func (s *MessageService) Send(ctx context.Context, message *models.Message) error {
	if _, err := s.tenantRepo.FindByID(ctx, message.TenantID); err != nil {
		return mapNotFound(err)
	}
	return s.repo.Create(ctx, message)
}

func (s *MessageService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapNotFound(err)
	}
	return s.repo.Delete(ctx, id)
}
