package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

// exportFixture backs the exporter with a real occupancy service over mocks:
// one property, one four-night checked-out stay worth 4800 in March 2026.
func exportFixture() *ExportService {
	svc, propertyRepo, bookingRepo, _ := occupancyFixture(nil)
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Name: "Casa Marina", Status: models.PropertyStatusActive})
	bookingRepo.mockFindInWindow = func(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 7, PropertyID: 4, GuestName: "Ana Castro", CheckInDate: day(2026, 3, 10), CheckOutDate: day(2026, 3, 14), Status: models.BookingStatusCheckedOut, TotalAmount: 4800},
		}, nil
	}
	return NewExportService(svc)
}

func TestExportCSV(t *testing.T) {
	svc := exportFixture()

	data, filename, err := svc.ExportCSV(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("occupancy_report_%s.csv", time.Now().Format("2006-01-02")), filename)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // section rows have different widths
	rows, err := reader.ReadAll()
	assert.NoError(t, err)
	// The reader drops the blank spacer lines between sections
	assert.Len(t, rows, 12)

	assert.Equal(t, []string{"Reporte de Ocupación", "2026-03-01 a 2026-03-31"}, rows[0])

	// Summary section: 4 occupied of 30 available days
	assert.Equal(t, []string{"Propiedades", "1"}, rows[3])
	assert.Equal(t, []string{"Días en el Rango", "30"}, rows[4])
	assert.Equal(t, []string{"Días Disponibles", "30"}, rows[5])
	assert.Equal(t, []string{"Días Ocupados", "4"}, rows[6])
	assert.Equal(t, []string{"Ocupación General", "13.3%"}, rows[7])
	assert.Equal(t, []string{"Ingresos Totales", "4800.00"}, rows[8])

	// Per-property detail: ADR = 4800/4, RevPAR = 4800/30
	assert.Equal(t, []string{"Propiedad", "Días Ocupados", "Días Vacantes", "Días Totales", "Ocupación %", "Reservas", "Ingresos", "ADR", "RevPAR"}, rows[10])
	assert.Equal(t, []string{"Casa Marina", "4", "26", "30", "13.3", "1", "4800.00", "1200.00", "160.00"}, rows[11])
}

func TestExportXLSX(t *testing.T) {
	svc := exportFixture()

	data, filename, err := svc.ExportXLSX(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("occupancy_report_%s.xlsx", time.Now().Format("2006-01-02")), filename)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	assert.NoError(t, err)
	defer wb.Close()

	cell := func(ref string) string {
		v, err := wb.GetCellValue("Ocupación", ref)
		assert.NoError(t, err)
		return v
	}

	assert.Equal(t, "Reporte de Ocupación", cell("A1"))
	assert.Equal(t, "2026-03-01 a 2026-03-31", cell("B1"))
	assert.Equal(t, "1", cell("B5"))
	assert.Equal(t, "4", cell("B7"))
	assert.Equal(t, "13.3%", cell("B8"))
	assert.Equal(t, "4800", cell("B9"))

	// First detail row sits under the table header on row 12
	assert.Equal(t, "Casa Marina", cell("A13"))
	assert.Equal(t, "4", cell("B13"))
	assert.Equal(t, "30", cell("D13"))
	assert.Equal(t, "13.3", cell("E13"))
	assert.Equal(t, "4800", cell("G13"))
}

func TestExportPDF(t *testing.T) {
	svc := exportFixture()

	data, filename, err := svc.ExportPDF(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("occupancy_report_%s.pdf", time.Now().Format("2006-01-02")), filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportCSV_BadRange(t *testing.T) {
	svc := exportFixture()

	_, _, err := svc.ExportCSV(context.Background(), []uint{4}, day(2026, 3, 31), day(2026, 3, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)
}
