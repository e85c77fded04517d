package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Property     PropertyRepository
	Tenant       TenantRepository
	Booking      BookingRepository
	Lease        LeaseRepository
	Maintenance  MaintenanceRepository
	Message      MessageRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
	ReportCache  ReportCacheRepository
	AuditLog     AuditLogRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Property:     NewPropertyRepository(db),
		Tenant:       NewTenantRepository(db),
		Booking:      NewBookingRepository(db),
		Lease:        NewLeaseRepository(db),
		Maintenance:  NewMaintenanceRepository(db),
		Message:      NewMessageRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		ReportCache:  NewReportCacheRepository(db),
		AuditLog:     NewAuditLogRepository(db),
	}
}
