package models

import (
	"time"
)

// Tenant represents a guest or renter tracked by the CRM. A tenant may have
// an attached portal user account but does not need one.
type Tenant struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FullName    string     `gorm:"not null" json:"full_name"`
	Email       *string    `gorm:"index" json:"email"`
	Phone       *string    `json:"phone"`
	Identity    *string    `json:"identity"`
	UserID      *uint      `gorm:"index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status      string     `gorm:"default:active" json:"status"`
	Note        *string    `json:"note"`
	DiscardedAt *time.Time `gorm:"index" json:"discarded_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Tenant
func (Tenant) TableName() string {
	return "tenants"
}

// Tenant status constants
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// IsDiscarded checks if the tenant has been soft deleted
func (t *Tenant) IsDiscarded() bool {
	return t.DiscardedAt != nil
}

// TenantResponse is the JSON response format for tenants
type TenantResponse struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Identity  *string   `json:"identity,omitempty"`
	Status    string    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts Tenant to TenantResponse
func (t *Tenant) ToResponse() TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		FullName:  t.FullName,
		Email:     t.Email,
		Phone:     t.Phone,
		Identity:  t.Identity,
		Status:    t.Status,
		Note:      t.Note,
		CreatedAt: t.CreatedAt,
	}
}
