package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"sort"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

type ReportService struct {
	bookingRepo  repository.BookingRepository
	leaseRepo    repository.LeaseRepository
	propertyRepo repository.PropertyRepository
	occupancySvc *OccupancyService
}

func NewReportService(
	bookingRepo repository.BookingRepository,
	leaseRepo repository.LeaseRepository,
	propertyRepo repository.PropertyRepository,
	occupancySvc *OccupancyService,
) *ReportService {
	return &ReportService{
		bookingRepo:  bookingRepo,
		leaseRepo:    leaseRepo,
		propertyRepo: propertyRepo,
		occupancySvc: occupancySvc,
	}
}

// Translation maps for CSV and PDF output
var bookingStatusTranslations = map[string]string{
	models.BookingStatusPending:    "Pendiente",
	models.BookingStatusConfirmed:  "Confirmada",
	models.BookingStatusCheckedIn:  "En estadía",
	models.BookingStatusCheckedOut: "Finalizada",
	models.BookingStatusCancelled:  "Cancelada",
	models.BookingStatusNoShow:     "No presentado",
}

var bookingSourceTranslations = map[string]string{
	models.BookingSourceDirect:  "Directa",
	models.BookingSourcePortal:  "Portal",
	models.BookingSourcePartner: "Socio",
}

func translate(m map[string]string, key string) string {
	if val, ok := m[key]; ok {
		return val
	}
	return key
}

// GenerateBookingsCSV generates a CSV of bookings whose stay touches the
// given date range. Empty bounds widen to everything on that side.
func (s *ReportService) GenerateBookingsCSV(ctx context.Context, startDate, endDate string) (*bytes.Buffer, error) {
	var start, end time.Time
	if startDate != "" {
		parsed, err := time.Parse(models.DateLayout, startDate)
		if err != nil {
			return nil, ErrInvalidRange
		}
		start = parsed
	}
	if endDate != "" {
		parsed, err := time.Parse(models.DateLayout, endDate)
		if err != nil {
			return nil, ErrInvalidRange
		}
		end = parsed
	} else {
		end = time.Now().AddDate(10, 0, 0)
	}
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	bookings, err := s.bookingRepo.FindInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Reserva ID", "Huésped", "Propiedad", "Entrada", "Salida", "Noches", "Estado", "Fuente", "Monto", "Moneda"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, booking := range bookings {
		propName := "N/A"
		if booking.Property != nil {
			propName = booking.Property.Name
		}

		record := []string{
			fmt.Sprintf("%d", booking.ID),
			booking.GuestName,
			propName,
			booking.CheckInDate.Format(models.DateLayout),
			booking.CheckOutDate.Format(models.DateLayout),
			fmt.Sprintf("%d", booking.Nights()),
			translate(bookingStatusTranslations, booking.Status),
			translate(bookingSourceTranslations, booking.Source),
			fmt.Sprintf("%.2f", booking.TotalAmount),
			booking.Currency,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b, nil
}

// GenerateOccupancyStatementPDF renders a monthly statement for one
// property: its occupancy metrics plus every reservation touching the month.
// month uses the "2006-01" layout.
func (s *ReportService) GenerateOccupancyStatementPDF(ctx context.Context, propertyID uint, month string) (*bytes.Buffer, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, ErrInvalidRange
	}
	end := start.AddDate(0, 1, 0)

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	report, err := s.occupancySvc.AggregateOccupancy(ctx, []uint{propertyID}, start, end)
	if err != nil {
		return nil, err
	}

	reservations, err := s.monthReservations(ctx, propertyID, start, end)
	if err != nil {
		return nil, err
	}

	type ReservationRow struct {
		Kind      string
		GuestName string
		StartDate string
		EndDate   string
		Days      int
		Status    string
		Revenue   string
	}

	type StatementData struct {
		PropertyName string
		Address      string
		MonthLabel   string
		GeneratedAt  string
		OccupiedDays int
		VacantDays   int
		TotalDays    int
		Rate         string
		Revenue      string
		ADR          string
		RevPAR       string
		Reservations []ReservationRow
	}

	kindLabels := map[string]string{
		models.ReservationKindBooking: "Reserva",
		models.ReservationKindLease:   "Alquiler",
	}

	var rows []ReservationRow
	for _, r := range reservations {
		status := translate(bookingStatusTranslations, r.Status)
		if r.Kind == models.ReservationKindLease {
			status = translate(leaseStatusTranslations, r.Status)
		}
		rows = append(rows, ReservationRow{
			Kind:      translate(kindLabels, r.Kind),
			GuestName: r.GuestName,
			StartDate: r.StartDate.Format("02/01/2006"),
			EndDate:   r.EndDate.Format("02/01/2006"),
			Days:      models.DaysBetween(r.StartDate, r.EndDate),
			Status:    status,
			Revenue:   fmt.Sprintf("%.2f", r.Revenue),
		})
	}

	data := StatementData{
		PropertyName: property.Name,
		Address:      property.Address,
		MonthLabel:   start.Format("01/2006"),
		GeneratedAt:  time.Now().Format("02/01/2006"),
		Reservations: rows,
	}
	if len(report.ByProperty) > 0 {
		metrics := report.ByProperty[0].Metrics
		data.OccupiedDays = metrics.OccupiedDays
		data.VacantDays = metrics.VacantDays
		data.TotalDays = metrics.TotalDays
		data.Rate = fmt.Sprintf("%.1f%%", metrics.OccupancyRate)
		data.Revenue = fmt.Sprintf("%.2f", metrics.TotalRevenue)
		data.ADR = fmt.Sprintf("%.2f", metrics.AverageDailyRate)
		data.RevPAR = fmt.Sprintf("%.2f", metrics.RevPAR)
	}

	return s.generatePDF("occupancy_statement.html", data)
}

var leaseStatusTranslations = map[string]string{
	models.LeaseStatusActive:     "Activo",
	models.LeaseStatusExpired:    "Expirado",
	models.LeaseStatusTerminated: "Terminado",
}

// monthReservations collects the counted reservations of both kinds touching
// [start, end), ordered by start date
func (s *ReportService) monthReservations(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Reservation, error) {
	ids := []uint{propertyID}

	bookings, err := s.bookingRepo.FindInWindow(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	leases, err := s.leaseRepo.FindInWindow(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}

	var reservations []models.Reservation
	for i := range bookings {
		r := bookings[i].ToReservation()
		if r.CountsForOccupancy() {
			reservations = append(reservations, r)
		}
	}
	for i := range leases {
		r := leases[i].ToReservation()
		if r.CountsForOccupancy() {
			reservations = append(reservations, r)
		}
	}

	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].StartDate.Equal(reservations[j].StartDate) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].StartDate.Before(reservations[j].StartDate)
	})
	return reservations, nil
}

// Helper to generate PDF from HTML template
func (s *ReportService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	// Try path relative to project root (Prod)
	tmplPath := fmt.Sprintf("internal/services/templates/reports/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		// Try path relative to package (Test)
		tmplPath = fmt.Sprintf("templates/reports/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s (path: %s): %w", templateName, tmplPath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}
