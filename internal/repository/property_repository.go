package repository

import (
	"context"
	"errors"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"gorm.io/gorm"
)

// PropertyRepository defines the interface for property data access
type PropertyRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Property, error)
	FindByGUID(ctx context.Context, guid string) (*models.Property, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Property, error)
	FindAllActive(ctx context.Context) ([]models.Property, error)
	Create(ctx context.Context, property *models.Property) error
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Property, int64, error)
}

type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).First(&property, id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) FindByGUID(ctx context.Context, guid string) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Where("guid = ?", guid).First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Property, error) {
	var properties []models.Property
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&properties).Error
	return properties, err
}

func (r *propertyRepository) FindAllActive(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PropertyStatusActive).
		Order("name ASC").
		Find(&properties).Error
	return properties, err
}

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

func (r *propertyRepository) Update(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

func (r *propertyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Property{}, id).Error
}

func (r *propertyRepository) List(ctx context.Context, query *ListQuery) ([]models.Property, int64, error) {
	var properties []models.Property
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Property{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR address ILIKE ? OR city ILIKE ? OR guid ILIKE ?",
			search, search, search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["rental_type"] != "" {
		db = db.Where("rental_type = ?", query.Filters["rental_type"])
	}
	if query.Filters["property_type"] != "" {
		db = db.Where("property_type = ?", query.Filters["property_type"])
	}
	if query.Filters["city"] != "" {
		db = db.Where("city = ?", query.Filters["city"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("name ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&properties).Error
	return properties, total, err
}

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Tenant, error)
	FindByEmail(ctx context.Context, email string) (*models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Tenant, int64, error)
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) FindByID(ctx context.Context, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&tenant, id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) FindByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND discarded_at IS NULL", email).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		if isDuplicateKeyError(err, "tenants_email_key") {
			return errors.New("Ya existe un inquilino con este correo electrónico")
		}
		return err
	}
	return nil
}

func (r *tenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

func (r *tenantRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Update("discarded_at", gorm.Expr("NOW()")).Error
}

func (r *tenantRepository) Restore(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Update("discarded_at", nil).Error
}

func (r *tenantRepository) List(ctx context.Context, query *ListQuery) ([]models.Tenant, int64, error) {
	var tenants []models.Tenant
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("discarded_at IS NULL")

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR identity ILIKE ?",
			search, search, search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("full_name ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&tenants).Error
	return tenants, total, err
}

// MaintenanceRepository defines the interface for maintenance request data access
type MaintenanceRepository interface {
	FindByID(ctx context.Context, id uint) (*models.MaintenanceRequest, error)
	FindByProperty(ctx context.Context, propertyID uint) ([]models.MaintenanceRequest, error)
	Create(ctx context.Context, request *models.MaintenanceRequest) error
	Update(ctx context.Context, request *models.MaintenanceRequest) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.MaintenanceRequest, int64, error)
	CountOpenByProperty(ctx context.Context, propertyID uint) (int64, error)
}

type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance repository
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) FindByID(ctx context.Context, id uint) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		Preload("Assignee").
		First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *maintenanceRepository) FindByProperty(ctx context.Context, propertyID uint) ([]models.MaintenanceRequest, error) {
	var requests []models.MaintenanceRequest
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *maintenanceRepository) Create(ctx context.Context, request *models.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *maintenanceRepository) Update(ctx context.Context, request *models.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *maintenanceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MaintenanceRequest{}, id).Error
}

func (r *maintenanceRepository) List(ctx context.Context, query *ListQuery) ([]models.MaintenanceRequest, int64, error) {
	var requests []models.MaintenanceRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&models.MaintenanceRequest{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN properties ON properties.id = maintenance_requests.property_id").
			Where("maintenance_requests.title ILIKE ? OR properties.name ILIKE ?", search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("maintenance_requests.status = ?", query.Filters["status"])
	}
	if query.Filters["priority"] != "" {
		db = db.Where("maintenance_requests.priority = ?", query.Filters["priority"])
	}
	if query.Filters["property_id"] != "" {
		db = db.Where("maintenance_requests.property_id = ?", query.Filters["property_id"])
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("maintenance_requests.created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Preload("Property").
		Preload("Tenant").
		Preload("Assignee").
		Find(&requests).Error
	return requests, total, err
}

func (r *maintenanceRepository) CountOpenByProperty(ctx context.Context, propertyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MaintenanceRequest{}).
		Where("property_id = ? AND status IN ?", propertyID,
			[]string{models.MaintenanceStatusOpen, models.MaintenanceStatusInProgress}).
		Count(&count).Error
	return count, err
}

// MessageRepository defines the interface for stored tenant messages
type MessageRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	FindByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.Message, int64, error)
	Create(ctx context.Context, message *models.Message) error
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Preload("Sender").
		First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.Message, int64, error) {
	var messages []models.Message
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Message{}).Where("tenant_id = ?", tenantID)

	db.Count(&total)
	db = db.Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Sender").Find(&messages).Error
	return messages, total, err
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Message{}, id).Error
}
