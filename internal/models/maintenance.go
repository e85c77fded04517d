package models

import (
	"time"
)

// MaintenanceRequest tracks repair and upkeep work reported on a property
type MaintenanceRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PropertyID  uint       `gorm:"not null;index" json:"property_id"`
	Property    *Property  `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	TenantID    *uint      `gorm:"index" json:"tenant_id"`
	Tenant      *Tenant    `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `json:"description"`
	Priority    string     `gorm:"default:medium" json:"priority"`
	Status      string     `gorm:"default:open;index" json:"status"`
	AssigneeID  *uint      `json:"assignee_id"`
	Assignee    *User      `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	ReporterID  *uint      `json:"reporter_id"`
	Reporter    *User      `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Cost        float64    `gorm:"type:decimal(12,2);default:0" json:"cost"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for MaintenanceRequest
func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// Maintenance status constants
const (
	MaintenanceStatusOpen       = "open"
	MaintenanceStatusInProgress = "in_progress"
	MaintenanceStatusResolved   = "resolved"
	MaintenanceStatusClosed     = "closed"
)

// Maintenance priority constants
const (
	MaintenancePriorityLow    = "low"
	MaintenancePriorityMedium = "medium"
	MaintenancePriorityHigh   = "high"
	MaintenancePriorityUrgent = "urgent"
)

// MayStart checks if work on the request can begin
func (m *MaintenanceRequest) MayStart() bool {
	return m.Status == MaintenanceStatusOpen
}

// MayResolve checks if the request can be marked resolved
func (m *MaintenanceRequest) MayResolve() bool {
	return m.Status == MaintenanceStatusOpen || m.Status == MaintenanceStatusInProgress
}

// MayClose checks if the request can be closed
func (m *MaintenanceRequest) MayClose() bool {
	return m.Status == MaintenanceStatusResolved
}

// MaintenanceResponse is the JSON response format for maintenance requests
type MaintenanceResponse struct {
	ID          uint       `json:"id"`
	PropertyID  uint       `json:"property_id"`
	TenantID    *uint      `json:"tenant_id,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	AssigneeID  *uint      `json:"assignee_id,omitempty"`
	Cost        float64    `json:"cost"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToResponse converts MaintenanceRequest to MaintenanceResponse
func (m *MaintenanceRequest) ToResponse() MaintenanceResponse {
	return MaintenanceResponse{
		ID:          m.ID,
		PropertyID:  m.PropertyID,
		TenantID:    m.TenantID,
		Title:       m.Title,
		Description: m.Description,
		Priority:    m.Priority,
		Status:      m.Status,
		AssigneeID:  m.AssigneeID,
		Cost:        m.Cost,
		ResolvedAt:  m.ResolvedAt,
		CreatedAt:   m.CreatedAt,
	}
}
