package services

import (
	"time"

	"github.com/Comfie/property-crm-sub000/internal/config"
	"github.com/Comfie/property-crm-sub000/internal/jobs"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/Comfie/property-crm-sub000/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Property     *PropertyService
	Tenant       *TenantService
	Availability *AvailabilityService
	Booking      *BookingService
	Lease        *LeaseService
	Maintenance  *MaintenanceService
	Message      *MessageService
	Occupancy    *OccupancyService
	Report       *ReportService
	Export       *ExportService
	Notification *NotificationService
	Audit        *AuditService
	Email        *EmailService
	Job          *JobService
	Storage      *storage.LocalStorage
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(repos.AuditLog)
	imageSvc := NewImageService(cfg.StoragePath + "/uploads")

	availabilitySvc := NewAvailabilityService(repos.Property, repos.Booking, repos.Lease)
	occupancySvc := NewOccupancyService(
		repos.Property,
		repos.Booking,
		repos.Lease,
		repos.ReportCache,
		time.Duration(cfg.ReportCacheTTLMinutes)*time.Minute,
	)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, worker, emailSvc, auditSvc),
		Property:     NewPropertyService(repos.Property, repos.Booking, repos.Lease, imageSvc, occupancySvc, auditSvc),
		Tenant:       NewTenantService(repos.Tenant, auditSvc),
		Availability: availabilitySvc,
		Booking:      NewBookingService(db, repos.Booking, occupancySvc, notificationSvc, emailSvc, auditSvc, worker, cfg.PendingHoldDays),
		Lease:        NewLeaseService(db, repos.Lease, repos.Tenant, occupancySvc, notificationSvc, emailSvc, auditSvc, worker),
		Maintenance:  NewMaintenanceService(repos.Maintenance, notificationSvc, auditSvc, worker),
		Message:      NewMessageService(repos.Message, repos.Tenant),
		Occupancy:    occupancySvc,
		Report:       NewReportService(repos.Booking, repos.Lease, repos.Property, occupancySvc),
		Export:       NewExportService(occupancySvc),
		Notification: notificationSvc,
		Audit:        auditSvc,
		Email:        emailSvc,
		Job:          NewJobService(worker),
		Storage:      store,
	}
}
