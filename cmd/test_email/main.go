package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/config"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/Comfie/property-crm-sub000/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.Setup("development")

	if cfg.ResendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is not set")
	}

	// Initialize email service
	emailService := services.NewEmailService(cfg)

	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com. Emails might mock or fail if domain not verified.")
	}

	user := &models.User{
		FullName: "Test User",
		Email:    toEmail,
	}

	// Send Account Created email
	log.Printf("Sending Account Created email to %s...", toEmail)
	err = emailService.SendAccountCreated(context.Background(), user)
	if err != nil {
		log.Fatalf("Failed to send Account Created email: %v", err)
	}
	log.Println("Account Created email sent successfully!")

	// Send Recovery Code email
	log.Printf("Sending Recovery Code email to %s...", toEmail)
	err = emailService.SendRecoveryCode(context.Background(), user, "123456")
	if err != nil {
		log.Fatalf("Failed to send Recovery Code email: %v", err)
	}
	log.Println("Recovery Code email sent successfully!")

	// Send Booking Created email with a fabricated stay
	checkIn := time.Now().AddDate(0, 0, 7)
	booking := &models.Booking{
		GuestName:    "Test User",
		GuestEmail:   &toEmail,
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, 3),
		TotalAmount:  4500,
		Currency:     "HNL",
		Property:     &models.Property{Name: "Apartamento Demo"},
	}

	log.Printf("Sending Booking Created email to %s...", toEmail)
	err = emailService.SendBookingCreated(context.Background(), booking)
	if err != nil {
		log.Fatalf("Failed to send Booking Created email: %v", err)
	}
	log.Println("Booking Created email sent successfully!")
}
