package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"gorm.io/gorm"
)

// blockingBookingStatuses are the booking statuses that occupy a property's
// calendar for availability purposes
var blockingBookingStatuses = []string{
	models.BookingStatusPending,
	models.BookingStatusConfirmed,
	models.BookingStatusCheckedIn,
}

// countedBookingStatuses excludes only the stays that never happened.
// Checked-out bookings still count toward historical occupancy and revenue.
var countedBookingStatuses = []string{
	models.BookingStatusPending,
	models.BookingStatusConfirmed,
	models.BookingStatusCheckedIn,
	models.BookingStatusCheckedOut,
}

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Booking, error)
	FindByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error)
	FindByTenant(ctx context.Context, tenantID uint) ([]models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *BookingQuery) ([]models.Booking, int64, error)
	FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error)
	FindInWindow(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Booking, error)
	FindStalePending(ctx context.Context, olderThanDays int) ([]models.Booking, error)
	FindInRange(ctx context.Context, start, end time.Time) ([]models.Booking, error)
	GetStats(ctx context.Context) (*BookingStats, error)
}

// BookingQuery extends ListQuery with booking-specific filters
type BookingQuery struct {
	*ListQuery
	PropertyID uint
	TenantID   uint
	Status     string
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	// Property, Tenant and Creator ride along in one query via Joins
	err := r.db.WithContext(ctx).
		Joins("Property").
		Joins("Tenant").
		Joins("Creator").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in_date ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) FindByTenant(ctx context.Context, tenantID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Property").
		Order("check_in_date DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *bookingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Booking{}, id).Error
}

func (r *bookingRepository) List(ctx context.Context, query *BookingQuery) ([]models.Booking, int64, error) {
	var bookings []models.Booking
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Booking{})

	if query.PropertyID > 0 {
		db = db.Where("bookings.property_id = ?", query.PropertyID)
	}
	if query.TenantID > 0 {
		db = db.Where("bookings.tenant_id = ?", query.TenantID)
	}

	// Apply status filter (single or multiple via status_in)
	if query.Filters != nil {
		if val, ok := query.Filters["status_in"]; ok && val != "" {
			statuses := strings.Split(val, ",")
			for i, s := range statuses {
				statuses[i] = strings.TrimSpace(s)
			}
			if len(statuses) > 0 {
				db = db.Where("bookings.status IN ?", statuses)
			}
		}
	}
	if query.Filters == nil || query.Filters["status_in"] == "" {
		if query.Status != "" {
			db = db.Where("bookings.status = ?", query.Status)
		}
	}

	// Window filters match any stay touching the range, half-open semantics
	if query.Filters != nil {
		if val, ok := query.Filters["start_date"]; ok && val != "" {
			db = db.Where("bookings.check_out_date > ?", val)
		}
		if val, ok := query.Filters["end_date"]; ok && val != "" {
			db = db.Where("bookings.check_in_date < ?", val)
		}
	}

	// Apply search (JOINs only for filtering; associations loaded via Preload below)
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN properties ON properties.id = bookings.property_id").
			Where("bookings.guest_name ILIKE ? OR properties.name ILIKE ? OR properties.address ILIKE ?",
				search, search, search)
	}

	// Count total using a separate session so the main query is not altered by Count()
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply sorting
	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("bookings.check_in_date DESC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Preload("Property").
		Preload("Tenant").
		Preload("Creator").
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// FindOverlapping returns the bookings that block the given half-open range.
// Two ranges overlap iff a.start < b.end AND b.start < a.end, so a stay ending
// the day another begins is not returned. Ordered by check-in ascending.
func (r *bookingRepository) FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status IN ?", blockingBookingStatuses).
		Where("check_in_date < ? AND check_out_date > ?", end, start).
		Order("check_in_date ASC").
		Find(&bookings).Error
	return bookings, err
}

// FindInWindow returns bookings touching the window for the occupancy report.
// Cancelled and no-show stays are excluded; checked-out stays are included.
func (r *bookingRepository) FindInWindow(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	db := r.db.WithContext(ctx).
		Where("status IN ?", countedBookingStatuses).
		Where("check_in_date < ? AND check_out_date > ?", end, start)
	if len(propertyIDs) > 0 {
		db = db.Where("property_id IN ?", propertyIDs)
	}
	err := db.Order("check_in_date ASC").Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) FindStalePending(ctx context.Context, olderThanDays int) ([]models.Booking, error) {
	var bookings []models.Booking
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.BookingStatusPending, cutoff).
		Preload("Property").
		Find(&bookings).Error
	return bookings, err
}

// FindInRange returns counted bookings whose stay touches [start, end), used
// by the CSV report
func (r *bookingRepository) FindInRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("status IN ?", countedBookingStatuses).
		Where("check_in_date < ? AND check_out_date > ?", end, start).
		Preload("Property").
		Preload("Tenant").
		Order("check_in_date ASC").
		Find(&bookings).Error
	return bookings, err
}

// BookingStats holds the count of bookings by status
type BookingStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	CheckedIn int64 `json:"checked_in"`
	Cancelled int64 `json:"cancelled"`
}

func (r *bookingRepository) GetStats(ctx context.Context) (*BookingStats, error) {
	stats := &BookingStats{}

	// Single query for counts by status
	rows, err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("status, count(*) as count").
		Group("status").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var total int64
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		total += count
		switch status {
		case models.BookingStatusPending:
			stats.Pending = count
		case models.BookingStatusConfirmed:
			stats.Confirmed = count
		case models.BookingStatusCheckedIn:
			stats.CheckedIn = count
		case models.BookingStatusCancelled:
			stats.Cancelled = count
		}
	}
	stats.Total = total

	return stats, nil
}

// LeaseRepository defines the interface for lease data access
type LeaseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Lease, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Lease, error)
	FindByProperty(ctx context.Context, propertyID uint) ([]models.Lease, error)
	FindByTenant(ctx context.Context, tenantID uint) ([]models.Lease, error)
	Create(ctx context.Context, lease *models.Lease) error
	Update(ctx context.Context, lease *models.Lease) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *LeaseQuery) ([]models.Lease, int64, error)
	FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Lease, error)
	FindInWindow(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Lease, error)
	FindExpiring(ctx context.Context, by time.Time) ([]models.Lease, error)
}

// LeaseQuery extends ListQuery with lease-specific filters
type LeaseQuery struct {
	*ListQuery
	PropertyID uint
	TenantID   uint
	Status     string
}

type leaseRepository struct {
	db *gorm.DB
}

// NewLeaseRepository creates a new lease repository
func NewLeaseRepository(db *gorm.DB) LeaseRepository {
	return &leaseRepository{db: db}
}

func (r *leaseRepository) FindByID(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	err := r.db.WithContext(ctx).First(&lease, id).Error
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *leaseRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	err := r.db.WithContext(ctx).
		Joins("Property").
		Joins("Tenant").
		Joins("Creator").
		First(&lease, id).Error
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *leaseRepository) FindByProperty(ctx context.Context, propertyID uint) ([]models.Lease, error) {
	var leases []models.Lease
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Preload("Tenant").
		Order("start_date ASC").
		Find(&leases).Error
	return leases, err
}

func (r *leaseRepository) FindByTenant(ctx context.Context, tenantID uint) ([]models.Lease, error) {
	var leases []models.Lease
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Property").
		Order("start_date DESC").
		Find(&leases).Error
	return leases, err
}

func (r *leaseRepository) Create(ctx context.Context, lease *models.Lease) error {
	return r.db.WithContext(ctx).Create(lease).Error
}

func (r *leaseRepository) Update(ctx context.Context, lease *models.Lease) error {
	return r.db.WithContext(ctx).Save(lease).Error
}

func (r *leaseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Lease{}, id).Error
}

func (r *leaseRepository) List(ctx context.Context, query *LeaseQuery) ([]models.Lease, int64, error) {
	var leases []models.Lease
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Lease{})

	if query.PropertyID > 0 {
		db = db.Where("leases.property_id = ?", query.PropertyID)
	}
	if query.TenantID > 0 {
		db = db.Where("leases.tenant_id = ?", query.TenantID)
	}
	if query.Status != "" {
		db = db.Where("leases.status = ?", query.Status)
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN tenants ON tenants.id = leases.tenant_id").
			Joins("LEFT JOIN properties ON properties.id = leases.property_id").
			Where("tenants.full_name ILIKE ? OR properties.name ILIKE ? OR properties.address ILIKE ?",
				search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("leases.start_date DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Preload("Property").
		Preload("Tenant").
		Find(&leases).Error
	if err != nil {
		return nil, 0, err
	}

	return leases, total, nil
}

// FindOverlapping returns active leases blocking the given half-open range,
// ordered by start date ascending
func (r *leaseRepository) FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Lease, error) {
	var leases []models.Lease
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status = ?", models.LeaseStatusActive).
		Where("start_date < ? AND end_date > ?", end, start).
		Preload("Tenant").
		Order("start_date ASC").
		Find(&leases).Error
	return leases, err
}

// FindInWindow returns leases touching the window for the occupancy report.
// Terminated and expired leases still count; their occupied days are history.
func (r *leaseRepository) FindInWindow(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Lease, error) {
	var leases []models.Lease
	db := r.db.WithContext(ctx).
		Where("start_date < ? AND end_date > ?", end, start).
		Preload("Tenant")
	if len(propertyIDs) > 0 {
		db = db.Where("property_id IN ?", propertyIDs)
	}
	err := db.Order("start_date ASC").Find(&leases).Error
	return leases, err
}

// FindExpiring returns active leases whose end date falls on or before the
// given day
func (r *leaseRepository) FindExpiring(ctx context.Context, by time.Time) ([]models.Lease, error) {
	var leases []models.Lease
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", models.LeaseStatusActive, by).
		Preload("Property").
		Preload("Tenant").
		Order("end_date ASC").
		Find(&leases).Error
	return leases, err
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Notification, int64, error)
	Create(ctx context.Context, notification *models.Notification) error
	Update(ctx context.Context, notification *models.Notification) error
	Delete(ctx context.Context, id uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	if status, ok := query.Filters["status"]; ok && status != "" {
		switch strings.ToLower(status) {
		case "unread":
			db = db.Where("read_at IS NULL")
		case "read":
			db = db.Where("read_at IS NOT NULL")
		}
	}

	db.Count(&total)
	db = db.Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Save(notification).Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, id).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// RefreshTokenRepository defines the interface for refresh token data access
type RefreshTokenRepository interface {
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Create(ctx context.Context, rt *models.RefreshToken) error
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *refreshTokenRepository) Create(ctx context.Context, rt *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *refreshTokenRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}
