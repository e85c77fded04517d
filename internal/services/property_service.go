package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/google/uuid"
)

type PropertyService struct {
	repo         repository.PropertyRepository
	bookingRepo  repository.BookingRepository
	leaseRepo    repository.LeaseRepository
	imageSvc     *ImageService
	occupancySvc *OccupancyService
	auditSvc     *AuditService
}

func NewPropertyService(
	repo repository.PropertyRepository,
	bookingRepo repository.BookingRepository,
	leaseRepo repository.LeaseRepository,
	imageSvc *ImageService,
	occupancySvc *OccupancyService,
	auditSvc *AuditService,
) *PropertyService {
	return &PropertyService{
		repo:         repo,
		bookingRepo:  bookingRepo,
		leaseRepo:    leaseRepo,
		imageSvc:     imageSvc,
		occupancySvc: occupancySvc,
		auditSvc:     auditSvc,
	}
}

func validRentalType(rentalType string) bool {
	switch rentalType {
	case models.RentalTypeShortTerm, models.RentalTypeLongTerm, models.RentalTypeBoth:
		return true
	}
	return false
}

func (s *PropertyService) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return property, nil
}

func (s *PropertyService) FindByGUID(ctx context.Context, guid string) (*models.Property, error) {
	property, err := s.repo.FindByGUID(ctx, guid)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return property, nil
}

func (s *PropertyService) List(ctx context.Context, query *repository.ListQuery) ([]models.Property, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *PropertyService) FindAllActive(ctx context.Context) ([]models.Property, error) {
	return s.repo.FindAllActive(ctx)
}

// Create registers a new property in the inventory. Unset fields get their
// defaults: a fresh guid, today's date as listing start, short-term rental.
func (s *PropertyService) Create(ctx context.Context, property *models.Property, actorID uint) error {
	if property.GUID == "" {
		property.GUID = uuid.New().String()
	}
	if property.RentalType == "" {
		property.RentalType = models.RentalTypeShortTerm
	}
	if !validRentalType(property.RentalType) {
		return fmt.Errorf("tipo de alquiler inválido: %s", property.RentalType)
	}
	if property.ListedAt == nil {
		// Occupancy denominators start counting the property from this date
		today := models.DateOnly(time.Now())
		property.ListedAt = &today
	}

	if err := s.repo.Create(ctx, property); err != nil {
		return err
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, actorID, "CREATE", "Property", property.ID,
		fmt.Sprintf("Propiedad %s creada (%s)", property.Name, property.RentalType), "", "")
	return nil
}

// Update persists edits, preserving fields the caller left unset
func (s *PropertyService) Update(ctx context.Context, property *models.Property, actorID uint) error {
	existing, err := s.repo.FindByID(ctx, property.ID)
	if err != nil {
		return mapNotFound(err)
	}

	if property.GUID == "" {
		property.GUID = existing.GUID
	}
	if property.Status == "" {
		property.Status = existing.Status
	}
	if property.RentalType == "" {
		property.RentalType = existing.RentalType
	}
	if !validRentalType(property.RentalType) {
		return fmt.Errorf("tipo de alquiler inválido: %s", property.RentalType)
	}
	if property.PropertyType == "" {
		property.PropertyType = existing.PropertyType
	}
	if property.ListedAt == nil {
		property.ListedAt = existing.ListedAt
	}
	if property.Amenities == nil {
		property.Amenities = existing.Amenities
	}
	if property.PhotoURL == nil {
		property.PhotoURL = existing.PhotoURL
	}
	if property.ThumbnailURL == nil {
		property.ThumbnailURL = existing.ThumbnailURL
	}
	if property.Note == nil {
		property.Note = existing.Note
	}

	if err := s.repo.Update(ctx, property); err != nil {
		return err
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, actorID, "UPDATE", "Property", property.ID,
		fmt.Sprintf("Propiedad %s actualizada", property.Name), "", "")
	return nil
}

// UploadPhoto processes and attaches a photo plus listing thumbnail
func (s *PropertyService) UploadPhoto(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader, actorID uint) (*models.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	photoURL, thumbURL, err := s.imageSvc.ProcessAndSavePropertyPhoto(file, header)
	if err != nil {
		return nil, err
	}

	property.PhotoURL = &photoURL
	property.ThumbnailURL = &thumbURL

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "UPDATE", "Property", property.ID,
		fmt.Sprintf("Foto actualizada para la propiedad %s", property.Name), "", "")
	return property, nil
}

// Delete removes a property that has no reservation history. Properties with
// bookings or leases should be deactivated instead so reports keep working.
func (s *PropertyService) Delete(ctx context.Context, id uint, actorID uint) error {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	bookings, err := s.bookingRepo.FindByProperty(ctx, id)
	if err != nil {
		return err
	}
	leases, err := s.leaseRepo.FindByProperty(ctx, id)
	if err != nil {
		return err
	}
	if len(bookings) > 0 || len(leases) > 0 {
		return errors.New("no se puede eliminar una propiedad con reservas o contratos asociados; desactívela en su lugar")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.occupancySvc.InvalidateReports(ctx)
	s.auditSvc.Log(ctx, actorID, "DELETE", "Property", property.ID,
		fmt.Sprintf("Propiedad %s eliminada", property.Name), "", "")
	return nil
}
