package services

import (
	"context"
	"testing"

	"github.com/Comfie/property-crm-sub000/internal/config"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate_BookingCreated(t *testing.T) {
	logger.Setup("test")

	cfg := &config.Config{AppURL: "https://crm.example.com"}
	service := NewEmailService(cfg)

	data := struct {
		Name         string
		PropertyName string
		CheckInDate  string
		CheckOutDate string
		Nights       int
		TotalAmount  string
		AppURL       string
	}{
		Name:         "Ana Castro",
		PropertyName: "Casa Marina",
		CheckInDate:  "10/03/2026",
		CheckOutDate: "14/03/2026",
		Nights:       4,
		TotalAmount:  "HNL 4800.00",
		AppURL:       cfg.AppURL,
	}

	body, err := service.renderTemplate("booking_created.html", data)
	assert.NoError(t, err)
	assert.Contains(t, body, "Ana Castro")
	assert.Contains(t, body, "Casa Marina")
	assert.Contains(t, body, "10/03/2026")
	assert.Contains(t, body, "HNL 4800.00")
	assert.Contains(t, body, "https://crm.example.com")
}

func TestRenderTemplate_Unknown(t *testing.T) {
	service := NewEmailService(&config.Config{})

	_, err := service.renderTemplate("does_not_exist.html", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestSendBookingEmails_NoGuestEmail(t *testing.T) {
	// Guests are optional contacts: a booking without an email address is
	// silently skipped instead of failing the caller
	service := NewEmailService(&config.Config{})
	booking := &models.Booking{GuestName: "Walk In", CheckInDate: day(2026, 3, 10), CheckOutDate: day(2026, 3, 12)}

	assert.NoError(t, service.SendBookingCreated(context.Background(), booking))
	assert.NoError(t, service.SendBookingConfirmed(context.Background(), booking))
	assert.NoError(t, service.SendBookingCancelled(context.Background(), booking, "cambio de planes"))
}

func TestSendLeaseCreated_NoTenantEmail(t *testing.T) {
	service := NewEmailService(&config.Config{})

	// No tenant preloaded
	lease := &models.Lease{StartDate: day(2026, 1, 1), EndDate: day(2026, 12, 31)}
	assert.NoError(t, service.SendLeaseCreated(context.Background(), lease))

	// Tenant present but without an email address
	lease.Tenant = &models.Tenant{FullName: "Rosa Díaz"}
	assert.NoError(t, service.SendLeaseCreated(context.Background(), lease))
}
