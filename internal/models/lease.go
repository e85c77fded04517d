package models

import (
	"time"
)

// Lease represents a long-term rental agreement on a property. Like bookings
// the occupied range is half-open: [StartDate, EndDate).
type Lease struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PropertyID   uint       `gorm:"not null;index" json:"property_id"`
	Property     *Property  `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	TenantID     uint       `gorm:"not null;index" json:"tenant_id"`
	Tenant       *Tenant    `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	StartDate    time.Time  `gorm:"type:date;not null;index" json:"start_date"`
	EndDate      time.Time  `gorm:"type:date;not null;index" json:"end_date"`
	MonthlyRent  float64    `gorm:"type:decimal(12,2);default:0" json:"monthly_rent"`
	Deposit      float64    `gorm:"type:decimal(12,2);default:0" json:"deposit"`
	Currency     string     `gorm:"default:HNL" json:"currency"`
	Status       string     `gorm:"default:active;index" json:"status"`
	Note         *string    `json:"note"`
	DocumentPath *string    `json:"document_path,omitempty"`
	CreatorID    *uint      `json:"creator_id"`
	Creator      *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	TerminatedAt *time.Time `json:"terminated_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Lease
func (Lease) TableName() string {
	return "leases"
}

// Lease status constants
const (
	LeaseStatusActive     = "active"
	LeaseStatusExpired    = "expired"
	LeaseStatusTerminated = "terminated"
)

// MayTerminate checks if the lease can be terminated early
func (l *Lease) MayTerminate() bool {
	return l.Status == LeaseStatusActive
}

// MayExpire checks if the lease can roll over to expired once its end date
// has passed
func (l *Lease) MayExpire() bool {
	return l.Status == LeaseStatusActive
}

// Days returns the covered day count for the half-open date range
func (l *Lease) Days() int {
	return DaysBetween(l.StartDate, l.EndDate)
}

// TotalRent estimates the rent over the whole lease span, prorating the
// monthly amount at 30 days per month.
func (l *Lease) TotalRent() float64 {
	return l.MonthlyRent * float64(l.Days()) / 30.0
}

// ToReservation projects the lease into the shared reservation shape used by
// availability checks and occupancy reports
func (l *Lease) ToReservation() Reservation {
	guestName := ""
	if l.Tenant != nil {
		guestName = l.Tenant.FullName
	}
	return Reservation{
		ID:         l.ID,
		Kind:       ReservationKindLease,
		PropertyID: l.PropertyID,
		GuestName:  guestName,
		StartDate:  DateOnly(l.StartDate),
		EndDate:    DateOnly(l.EndDate),
		Status:     l.Status,
		Revenue:    l.TotalRent(),
	}
}

// LeaseResponse is the JSON response format for leases
type LeaseResponse struct {
	ID           uint              `json:"id"`
	PropertyID   uint              `json:"property_id"`
	Property     *PropertyResponse `json:"property,omitempty"`
	TenantID     uint              `json:"tenant_id"`
	Tenant       *TenantResponse   `json:"tenant,omitempty"`
	StartDate    time.Time         `json:"start_date"`
	EndDate      time.Time         `json:"end_date"`
	Days         int               `json:"days"`
	MonthlyRent  float64           `json:"monthly_rent"`
	Deposit      float64           `json:"deposit"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Note         *string           `json:"note,omitempty"`
	DocumentPath *string           `json:"document_path,omitempty"`
	TerminatedAt *time.Time        `json:"terminated_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ToResponse converts Lease to LeaseResponse
func (l *Lease) ToResponse() LeaseResponse {
	resp := LeaseResponse{
		ID:           l.ID,
		PropertyID:   l.PropertyID,
		TenantID:     l.TenantID,
		StartDate:    l.StartDate,
		EndDate:      l.EndDate,
		Days:         l.Days(),
		MonthlyRent:  l.MonthlyRent,
		Deposit:      l.Deposit,
		Currency:     l.Currency,
		Status:       l.Status,
		Note:         l.Note,
		DocumentPath: l.DocumentPath,
		TerminatedAt: l.TerminatedAt,
		CreatedAt:    l.CreatedAt,
	}
	if l.Property != nil {
		pr := l.Property.ToResponse()
		resp.Property = &pr
	}
	if l.Tenant != nil {
		tr := l.Tenant.ToResponse()
		resp.Tenant = &tr
	}
	return resp
}
