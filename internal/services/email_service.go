package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/Comfie/property-crm-sub000/internal/config"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/pkg/logger"
	"github.com/resend/resend-go/v2"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// Helper function to safely get string from pointer
func getStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func propertyName(property *models.Property) string {
	if property == nil {
		return ""
	}
	return property.Name
}

func (s *EmailService) send(to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func (s *EmailService) SendRecoveryCode(ctx context.Context, user *models.User, code string) error {
	data := struct {
		Name    string
		Code    string
		Minutes int
		AppURL  string
	}{
		Name:    user.FullName,
		Code:    code,
		Minutes: 15,
		AppURL:  s.config.AppURL,
	}

	body, err := s.renderTemplate("reset_code.html", data)
	if err != nil {
		return err
	}

	return s.send(user.Email, "Código de reseteo", body)
}

func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name   string
		AppURL string
	}{
		Name:   user.FullName,
		AppURL: s.config.AppURL,
	}

	body, err := s.renderTemplate("account_created.html", data)
	if err != nil {
		return err
	}

	return s.send(user.Email, "¡Bienvenido a HabitaCRM!", body)
}

// SendBookingCreated confirms to the guest that their reservation request
// was received and is pending confirmation
func (s *EmailService) SendBookingCreated(ctx context.Context, booking *models.Booking) error {
	if booking.GuestEmail == nil {
		return nil
	}

	data := struct {
		Name         string
		PropertyName string
		CheckInDate  string
		CheckOutDate string
		Nights       int
		TotalAmount  string
		AppURL       string
	}{
		Name:         booking.GuestName,
		PropertyName: propertyName(booking.Property),
		CheckInDate:  booking.CheckInDate.Format("02/01/2006"),
		CheckOutDate: booking.CheckOutDate.Format("02/01/2006"),
		Nights:       booking.Nights(),
		TotalAmount:  fmt.Sprintf("%s %.2f", booking.Currency, booking.TotalAmount),
		AppURL:       s.config.AppURL,
	}

	body, err := s.renderTemplate("booking_created.html", data)
	if err != nil {
		return err
	}

	return s.send(getStringValue(booking.GuestEmail), "Reserva recibida", body)
}

func (s *EmailService) SendBookingConfirmed(ctx context.Context, booking *models.Booking) error {
	if booking.GuestEmail == nil {
		return nil
	}

	data := struct {
		Name         string
		PropertyName string
		CheckInDate  string
		CheckOutDate string
		Nights       int
		TotalAmount  string
		AppURL       string
	}{
		Name:         booking.GuestName,
		PropertyName: propertyName(booking.Property),
		CheckInDate:  booking.CheckInDate.Format("02/01/2006"),
		CheckOutDate: booking.CheckOutDate.Format("02/01/2006"),
		Nights:       booking.Nights(),
		TotalAmount:  fmt.Sprintf("%s %.2f", booking.Currency, booking.TotalAmount),
		AppURL:       s.config.AppURL,
	}

	body, err := s.renderTemplate("booking_confirmed.html", data)
	if err != nil {
		return err
	}

	return s.send(getStringValue(booking.GuestEmail), "Reserva confirmada", body)
}

func (s *EmailService) SendBookingCancelled(ctx context.Context, booking *models.Booking, reason string) error {
	if booking.GuestEmail == nil {
		return nil
	}

	data := struct {
		Name         string
		PropertyName string
		CheckInDate  string
		CheckOutDate string
		Reason       string
		AppURL       string
	}{
		Name:         booking.GuestName,
		PropertyName: propertyName(booking.Property),
		CheckInDate:  booking.CheckInDate.Format("02/01/2006"),
		CheckOutDate: booking.CheckOutDate.Format("02/01/2006"),
		Reason:       reason,
		AppURL:       s.config.AppURL,
	}

	body, err := s.renderTemplate("booking_cancelled.html", data)
	if err != nil {
		return err
	}

	return s.send(getStringValue(booking.GuestEmail), "Reserva cancelada", body)
}

func (s *EmailService) SendLeaseCreated(ctx context.Context, lease *models.Lease) error {
	if lease.Tenant == nil || lease.Tenant.Email == nil {
		return nil
	}

	data := struct {
		Name         string
		PropertyName string
		StartDate    string
		EndDate      string
		MonthlyRent  string
		Deposit      string
		AppURL       string
	}{
		Name:         lease.Tenant.FullName,
		PropertyName: propertyName(lease.Property),
		StartDate:    lease.StartDate.Format("02/01/2006"),
		EndDate:      lease.EndDate.Format("02/01/2006"),
		MonthlyRent:  fmt.Sprintf("%s %.2f", lease.Currency, lease.MonthlyRent),
		Deposit:      fmt.Sprintf("%s %.2f", lease.Currency, lease.Deposit),
		AppURL:       s.config.AppURL,
	}

	body, err := s.renderTemplate("lease_created.html", data)
	if err != nil {
		return err
	}

	return s.send(getStringValue(lease.Tenant.Email), "Contrato de alquiler registrado", body)
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
