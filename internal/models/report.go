package models

import (
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// ConflictInfo describes one reservation blocking a requested date range.
// Field names are camelCase because the dashboard consumes these directly.
type ConflictInfo struct {
	ID           uint   `json:"id"`
	Kind         string `json:"kind"`
	GuestName    string `json:"guestName"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
}

// AvailabilityVerdict is the result of an availability query. It is computed
// fresh per request and never persisted or cached.
type AvailabilityVerdict struct {
	Available bool           `json:"available"`
	Conflicts []ConflictInfo `json:"conflicts"`
	Reason    string         `json:"reason,omitempty"`
	Nights    int            `json:"nights,omitempty"`
}

// NewConflictInfo builds the wire representation of a conflicting reservation
func NewConflictInfo(r Reservation) ConflictInfo {
	return ConflictInfo{
		ID:           r.ID,
		Kind:         r.Kind,
		GuestName:    r.GuestName,
		CheckInDate:  r.StartDate.Format(DateLayout),
		CheckOutDate: r.EndDate.Format(DateLayout),
	}
}

// OccupancyMetrics holds the per-property figures for a report window
type OccupancyMetrics struct {
	OccupiedDays     int     `json:"occupiedDays"`
	VacantDays       int     `json:"vacantDays"`
	TotalDays        int     `json:"totalDays"`
	OccupancyRate    float64 `json:"occupancyRate"`
	TotalBookings    int     `json:"totalBookings"`
	TotalRevenue     float64 `json:"totalRevenue"`
	AverageDailyRate float64 `json:"averageDailyRate"`
	RevPAR           float64 `json:"revPAR"`
}

// PropertyOccupancy pairs a property with its metrics
type PropertyOccupancy struct {
	Property PropertyResponse `json:"property"`
	Metrics  OccupancyMetrics `json:"metrics"`
}

// OccupancySummary aggregates the portfolio over the window. OverallOccupancy
// is recomputed from the summed day totals, never averaged across properties.
type OccupancySummary struct {
	TotalProperties    int     `json:"totalProperties"`
	DaysInRange        int     `json:"daysInRange"`
	TotalAvailableDays int     `json:"totalAvailableDays"`
	TotalOccupiedDays  int     `json:"totalOccupiedDays"`
	OverallOccupancy   float64 `json:"overallOccupancy"`
	TotalRevenue       float64 `json:"totalRevenue"`
}

// DailyOccupancyPoint is one day of the daily occupancy chart
type DailyOccupancyPoint struct {
	Date     string  `json:"date"`
	Occupied int     `json:"occupied"`
	Total    int     `json:"total"`
	Rate     float64 `json:"rate"`
}

// MonthlyTrendPoint is one calendar month of the trend chart
type MonthlyTrendPoint struct {
	Month         string  `json:"month"`
	OccupancyRate float64 `json:"occupancyRate"`
}

// OccupancyCharts holds the chart series derived from the day buckets
type OccupancyCharts struct {
	DailyOccupancy []DailyOccupancyPoint `json:"dailyOccupancy"`
	MonthlyTrend   []MonthlyTrendPoint   `json:"monthlyTrend"`
}

// OccupancyReport is the full occupancy/revenue report for a window
type OccupancyReport struct {
	Summary    OccupancySummary    `json:"summary"`
	ByProperty []PropertyOccupancy `json:"byProperty"`
	Charts     OccupancyCharts     `json:"charts"`
}

// ReportCache stores a rendered occupancy report under a derived key with a
// TTL. Availability verdicts are never stored here.
type ReportCache struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CacheKey  string         `gorm:"uniqueIndex;not null" json:"cache_key"`
	Data      datatypes.JSON `json:"data"`
	ExpiresAt time.Time      `gorm:"index" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName specifies the table name for ReportCache
func (ReportCache) TableName() string {
	return "report_caches"
}

// IsExpired checks if the cached report is past its TTL
func (rc *ReportCache) IsExpired() bool {
	return time.Now().After(rc.ExpiresAt)
}
