package handlers

import (
	"github.com/Comfie/property-crm-sub000/internal/config"
	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/Comfie/property-crm-sub000/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Property     *PropertyHandler
	Tenant       *TenantHandler
	Booking      *BookingHandler
	Lease        *LeaseHandler
	Maintenance  *MaintenanceHandler
	Message      *MessageHandler
	Availability *AvailabilityHandler
	Report       *ReportHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, storage *storage.LocalStorage, cfg *config.Config) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Property:     NewPropertyHandler(svcs.Property),
		Tenant:       NewTenantHandler(svcs.Tenant),
		Booking:      NewBookingHandler(svcs.Booking),
		Lease:        NewLeaseHandler(svcs.Lease, storage),
		Maintenance:  NewMaintenanceHandler(svcs.Maintenance),
		Message:      NewMessageHandler(svcs.Message),
		Availability: NewAvailabilityHandler(svcs.Availability),
		Report:       NewReportHandler(svcs.Report, svcs.Occupancy, svcs.Export, cfg.MaxReportWindowDays),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}
