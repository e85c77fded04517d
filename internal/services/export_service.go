package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the occupancy report as a downloadable file
type ExportService struct {
	occupancySvc *OccupancyService
}

func NewExportService(occupancySvc *OccupancyService) *ExportService {
	return &ExportService{occupancySvc: occupancySvc}
}

func (s *ExportService) ExportCSV(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]byte, string, error) {
	report, err := s.occupancySvc.GetOccupancyReport(ctx, propertyIDs, start, end)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	// Header
	_ = writer.Write([]string{"Reporte de Ocupación", fmt.Sprintf("%s a %s", start.Format(models.DateLayout), end.Format(models.DateLayout))})
	_ = writer.Write([]string{""})

	// Summary Section
	_ = writer.Write([]string{"Resumen General"})
	_ = writer.Write([]string{"Métrica", "Valor"})
	_ = writer.Write([]string{"Propiedades", fmt.Sprintf("%d", report.Summary.TotalProperties)})
	_ = writer.Write([]string{"Días en el Rango", fmt.Sprintf("%d", report.Summary.DaysInRange)})
	_ = writer.Write([]string{"Días Disponibles", fmt.Sprintf("%d", report.Summary.TotalAvailableDays)})
	_ = writer.Write([]string{"Días Ocupados", fmt.Sprintf("%d", report.Summary.TotalOccupiedDays)})
	_ = writer.Write([]string{"Ocupación General", fmt.Sprintf("%.1f%%", report.Summary.OverallOccupancy)})
	_ = writer.Write([]string{"Ingresos Totales", fmt.Sprintf("%.2f", report.Summary.TotalRevenue)})
	_ = writer.Write([]string{""})

	// Per-property Section
	_ = writer.Write([]string{"Detalle por Propiedad"})
	_ = writer.Write([]string{"Propiedad", "Días Ocupados", "Días Vacantes", "Días Totales", "Ocupación %", "Reservas", "Ingresos", "ADR", "RevPAR"})
	for _, entry := range report.ByProperty {
		_ = writer.Write([]string{
			entry.Property.Name,
			fmt.Sprintf("%d", entry.Metrics.OccupiedDays),
			fmt.Sprintf("%d", entry.Metrics.VacantDays),
			fmt.Sprintf("%d", entry.Metrics.TotalDays),
			fmt.Sprintf("%.1f", entry.Metrics.OccupancyRate),
			fmt.Sprintf("%d", entry.Metrics.TotalBookings),
			fmt.Sprintf("%.2f", entry.Metrics.TotalRevenue),
			fmt.Sprintf("%.2f", entry.Metrics.AverageDailyRate),
			fmt.Sprintf("%.2f", entry.Metrics.RevPAR),
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("occupancy_report_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportXLSX(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]byte, string, error) {
	report, err := s.occupancySvc.GetOccupancyReport(ctx, propertyIDs, start, end)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ocupación"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Reporte de Ocupación")
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	_ = f.SetCellValue(sheet, "B1", fmt.Sprintf("%s a %s", start.Format(models.DateLayout), end.Format(models.DateLayout)))

	_ = f.SetCellValue(sheet, "A3", "Resumen General")
	_ = f.SetCellValue(sheet, "A4", "Métrica")
	_ = f.SetCellValue(sheet, "B4", "Valor")

	_ = f.SetCellValue(sheet, "A5", "Propiedades")
	_ = f.SetCellValue(sheet, "B5", report.Summary.TotalProperties)
	_ = f.SetCellValue(sheet, "A6", "Días Disponibles")
	_ = f.SetCellValue(sheet, "B6", report.Summary.TotalAvailableDays)
	_ = f.SetCellValue(sheet, "A7", "Días Ocupados")
	_ = f.SetCellValue(sheet, "B7", report.Summary.TotalOccupiedDays)
	_ = f.SetCellValue(sheet, "A8", "Ocupación General")
	_ = f.SetCellValue(sheet, "B8", fmt.Sprintf("%.1f%%", report.Summary.OverallOccupancy))
	_ = f.SetCellValue(sheet, "A9", "Ingresos Totales")
	_ = f.SetCellValue(sheet, "B9", report.Summary.TotalRevenue)

	// Per-property table
	_ = f.SetCellValue(sheet, "A11", "Detalle por Propiedad")
	headers := []string{"Propiedad", "Días Ocupados", "Días Vacantes", "Días Totales", "Ocupación %", "Reservas", "Ingresos", "ADR", "RevPAR"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 12)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, entry := range report.ByProperty {
		values := []interface{}{
			entry.Property.Name,
			entry.Metrics.OccupiedDays,
			entry.Metrics.VacantDays,
			entry.Metrics.TotalDays,
			entry.Metrics.OccupancyRate,
			entry.Metrics.TotalBookings,
			entry.Metrics.TotalRevenue,
			entry.Metrics.AverageDailyRate,
			entry.Metrics.RevPAR,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, 13+row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("occupancy_report_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportPDF(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]byte, string, error) {
	report, err := s.occupancySvc.GetOccupancyReport(ctx, propertyIDs, start, end)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Reporte de Ocupacion")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, fmt.Sprintf("Periodo: %s a %s", start.Format(models.DateLayout), end.Format(models.DateLayout)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Resumen General")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, "Propiedades:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", report.Summary.TotalProperties))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Dias Disponibles:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", report.Summary.TotalAvailableDays))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Dias Ocupados:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", report.Summary.TotalOccupiedDays))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Ocupacion General:")
	pdf.Cell(40, 10, fmt.Sprintf("%.1f%%", report.Summary.OverallOccupancy))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Ingresos Totales:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f HNL", report.Summary.TotalRevenue))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Detalle por Propiedad")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, entry := range report.ByProperty {
		pdf.Cell(70, 8, entry.Property.Name)
		pdf.Cell(40, 8, fmt.Sprintf("%d/%d dias", entry.Metrics.OccupiedDays, entry.Metrics.TotalDays))
		pdf.Cell(30, 8, fmt.Sprintf("%.1f%%", entry.Metrics.OccupancyRate))
		pdf.Cell(40, 8, fmt.Sprintf("%.2f HNL", entry.Metrics.TotalRevenue))
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("occupancy_report_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
