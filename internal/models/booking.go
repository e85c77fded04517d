package models

import (
	"time"
)

// Booking represents a short-term stay on a property. Dates form a half-open
// range: the guest occupies [CheckInDate, CheckOutDate), so a stay ending on
// the day another begins does not overlap it.
type Booking struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PropertyID   uint       `gorm:"not null;index" json:"property_id"`
	Property     *Property  `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	TenantID     *uint      `gorm:"index" json:"tenant_id"`
	Tenant       *Tenant    `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	GuestName    string     `gorm:"not null" json:"guest_name"`
	GuestEmail   *string    `json:"guest_email"`
	GuestPhone   *string    `json:"guest_phone"`
	CheckInDate  time.Time  `gorm:"type:date;not null;index" json:"check_in_date"`
	CheckOutDate time.Time  `gorm:"type:date;not null;index" json:"check_out_date"`
	Guests       int        `gorm:"default:1" json:"guests"`
	Status       string     `gorm:"default:pending;index" json:"status"`
	TotalAmount  float64    `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	Currency     string     `gorm:"default:HNL" json:"currency"`
	Source       string     `gorm:"default:direct" json:"source"`
	Note         *string    `json:"note"`
	CreatorID    *uint      `json:"creator_id"`
	Creator      *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	CancelledAt  *time.Time `json:"cancelled_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// Booking status constants
const (
	BookingStatusPending    = "pending"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusCheckedIn  = "checked_in"
	BookingStatusCheckedOut = "checked_out"
	BookingStatusCancelled  = "cancelled"
	BookingStatusNoShow     = "no_show"
)

// Booking source constants
const (
	BookingSourceDirect  = "direct"
	BookingSourcePortal  = "portal"
	BookingSourcePartner = "partner"
)

// MayConfirm checks if the booking can transition to confirmed
func (b *Booking) MayConfirm() bool {
	return b.Status == BookingStatusPending
}

// MayCheckIn checks if the guest can be checked in
func (b *Booking) MayCheckIn() bool {
	return b.Status == BookingStatusConfirmed
}

// MayCheckOut checks if the guest can be checked out
func (b *Booking) MayCheckOut() bool {
	return b.Status == BookingStatusCheckedIn
}

// MayCancel checks if the booking can be cancelled
func (b *Booking) MayCancel() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// MayMarkNoShow checks if the booking can be marked as a no-show
func (b *Booking) MayMarkNoShow() bool {
	return b.Status == BookingStatusConfirmed
}

// MayReinstate checks if a cancelled booking can return to pending
func (b *Booking) MayReinstate() bool {
	return b.Status == BookingStatusCancelled
}

// IsFinal returns true once the booking reached a terminal status
func (b *Booking) IsFinal() bool {
	switch b.Status {
	case BookingStatusCheckedOut, BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

// Nights returns the stay length in nights for the half-open date range
func (b *Booking) Nights() int {
	return DaysBetween(b.CheckInDate, b.CheckOutDate)
}

// ToReservation projects the booking into the shared reservation shape used
// by availability checks and occupancy reports
func (b *Booking) ToReservation() Reservation {
	return Reservation{
		ID:         b.ID,
		Kind:       ReservationKindBooking,
		PropertyID: b.PropertyID,
		GuestName:  b.GuestName,
		StartDate:  DateOnly(b.CheckInDate),
		EndDate:    DateOnly(b.CheckOutDate),
		Status:     b.Status,
		Revenue:    b.TotalAmount,
	}
}

// BookingResponse is the JSON response format for bookings
type BookingResponse struct {
	ID           uint              `json:"id"`
	PropertyID   uint              `json:"property_id"`
	Property     *PropertyResponse `json:"property,omitempty"`
	TenantID     *uint             `json:"tenant_id,omitempty"`
	GuestName    string            `json:"guest_name"`
	GuestEmail   *string           `json:"guest_email,omitempty"`
	GuestPhone   *string           `json:"guest_phone,omitempty"`
	CheckInDate  time.Time         `json:"check_in_date"`
	CheckOutDate time.Time         `json:"check_out_date"`
	Nights       int               `json:"nights"`
	Guests       int               `json:"guests"`
	Status       string            `json:"status"`
	TotalAmount  float64           `json:"total_amount"`
	Currency     string            `json:"currency"`
	Source       string            `json:"source"`
	Note         *string           `json:"note,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ToResponse converts Booking to BookingResponse
func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:           b.ID,
		PropertyID:   b.PropertyID,
		TenantID:     b.TenantID,
		GuestName:    b.GuestName,
		GuestEmail:   b.GuestEmail,
		GuestPhone:   b.GuestPhone,
		CheckInDate:  b.CheckInDate,
		CheckOutDate: b.CheckOutDate,
		Nights:       b.Nights(),
		Guests:       b.Guests,
		Status:       b.Status,
		TotalAmount:  b.TotalAmount,
		Currency:     b.Currency,
		Source:       b.Source,
		Note:         b.Note,
		CreatedAt:    b.CreatedAt,
	}
	if b.Property != nil {
		pr := b.Property.ToResponse()
		resp.Property = &pr
	}
	return resp
}
