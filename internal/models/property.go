package models

import (
	"time"

	"gorm.io/datatypes"
)

// Property represents a rentable unit in the portfolio
type Property struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Address      string         `gorm:"not null" json:"address"`
	City         string         `json:"city"`
	PropertyType string         `gorm:"default:apartment" json:"property_type"`
	RentalType   string         `gorm:"default:short_term" json:"rental_type"`
	DailyRate    float64        `gorm:"type:decimal(10,2);default:0" json:"daily_rate"`
	MonthlyRent  float64        `gorm:"type:decimal(10,2);default:0" json:"monthly_rent"`
	MinNights    int            `gorm:"default:1" json:"min_nights"`
	ListedAt     *time.Time     `gorm:"type:date" json:"listed_at"`
	Status       string         `gorm:"default:active" json:"status"`
	GUID         string         `gorm:"column:guid;not null" json:"guid"`
	Amenities    datatypes.JSON `json:"amenities"`
	PhotoURL     *string        `json:"photo_url"`
	ThumbnailURL *string        `json:"thumbnail_url"`
	Note         *string        `json:"note"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Associations
	Bookings []Booking `gorm:"foreignKey:PropertyID" json:"bookings,omitempty"`
	Leases   []Lease   `gorm:"foreignKey:PropertyID" json:"leases,omitempty"`
}

// TableName specifies the table name for Property
func (Property) TableName() string {
	return "properties"
}

// Rental type constants. The rental type gates which reservation kinds share
// the property's overlap space.
const (
	RentalTypeShortTerm = "short_term"
	RentalTypeLongTerm  = "long_term"
	RentalTypeBoth      = "both"
)

// Property type constants
const (
	PropertyTypeApartment = "apartment"
	PropertyTypeHouse     = "house"
	PropertyTypeCondo     = "condo"
	PropertyTypeRoom      = "room"
)

// Property status constants
const (
	PropertyStatusActive   = "active"
	PropertyStatusInactive = "inactive"
)

// AcceptsBookings returns true if short-term bookings may be created for this
// property
func (p *Property) AcceptsBookings() bool {
	return p.RentalType == RentalTypeShortTerm || p.RentalType == RentalTypeBoth
}

// AcceptsLeases returns true if long-term leases may be created for this
// property
func (p *Property) AcceptsLeases() bool {
	return p.RentalType == RentalTypeLongTerm || p.RentalType == RentalTypeBoth
}

// IsActive returns true if the property is part of the rentable inventory
func (p *Property) IsActive() bool {
	return p.Status == PropertyStatusActive
}

// PropertyResponse is the JSON response format for properties
type PropertyResponse struct {
	ID           uint           `json:"id"`
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	City         string         `json:"city"`
	PropertyType string         `json:"property_type"`
	RentalType   string         `json:"rental_type"`
	DailyRate    float64        `json:"daily_rate"`
	MonthlyRent  float64        `json:"monthly_rent"`
	MinNights    int            `json:"min_nights"`
	ListedAt     *time.Time     `json:"listed_at"`
	Status       string         `json:"status"`
	Amenities    datatypes.JSON `json:"amenities"`
	PhotoURL     *string        `json:"photo_url"`
	ThumbnailURL *string        `json:"thumbnail_url"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ToResponse converts Property to PropertyResponse
func (p *Property) ToResponse() PropertyResponse {
	return PropertyResponse{
		ID:           p.ID,
		Name:         p.Name,
		Address:      p.Address,
		City:         p.City,
		PropertyType: p.PropertyType,
		RentalType:   p.RentalType,
		DailyRate:    p.DailyRate,
		MonthlyRent:  p.MonthlyRent,
		MinNights:    p.MinNights,
		ListedAt:     p.ListedAt,
		Status:       p.Status,
		Amenities:    p.Amenities,
		PhotoURL:     p.PhotoURL,
		ThumbnailURL: p.ThumbnailURL,
		CreatedAt:    p.CreatedAt,
	}
}
