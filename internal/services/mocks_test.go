package services

import (
	"context"
	"sync"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"gorm.io/gorm"
)

// Hand-rolled repository mocks shared by the service tests. Each embeds the
// real interface so only the methods a test cares about need an override;
// unset overrides fall back to empty results.

// day builds a midnight-UTC date, the granularity all reservation intervals
// use
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type mockPropertyRepo struct {
	repository.PropertyRepository
	mockFindByID      func(ctx context.Context, id uint) (*models.Property, error)
	mockFindByIDs     func(ctx context.Context, ids []uint) ([]models.Property, error)
	mockFindAllActive func(ctx context.Context) ([]models.Property, error)
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPropertyRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Property, error) {
	if m.mockFindByIDs != nil {
		return m.mockFindByIDs(ctx, ids)
	}
	return []models.Property{}, nil
}

func (m *mockPropertyRepo) FindAllActive(ctx context.Context) ([]models.Property, error) {
	if m.mockFindAllActive != nil {
		return m.mockFindAllActive(ctx)
	}
	return []models.Property{}, nil
}

type mockBookingRepo struct {
	repository.BookingRepository
	mockFindByID            func(ctx context.Context, id uint) (*models.Booking, error)
	mockFindByIDWithDetails func(ctx context.Context, id uint) (*models.Booking, error)
	mockUpdate              func(ctx context.Context, booking *models.Booking) error
	mockFindOverlapping     func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error)
	mockFindInWindow        func(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Booking, error)
	mockFindStalePending    func(ctx context.Context, olderThanDays int) ([]models.Booking, error)
	mockFindInRange         func(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.Booking, error) {
	if m.mockFindByIDWithDetails != nil {
		return m.mockFindByIDWithDetails(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepo) FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
	if m.mockFindOverlapping != nil {
		return m.mockFindOverlapping(ctx, propertyID, start, end)
	}
	return []models.Booking{}, nil
}

func (m *mockBookingRepo) FindInWindow(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Booking, error) {
	if m.mockFindInWindow != nil {
		return m.mockFindInWindow(ctx, propertyIDs, start, end)
	}
	return []models.Booking{}, nil
}

func (m *mockBookingRepo) FindStalePending(ctx context.Context, olderThanDays int) ([]models.Booking, error) {
	if m.mockFindStalePending != nil {
		return m.mockFindStalePending(ctx, olderThanDays)
	}
	return []models.Booking{}, nil
}

func (m *mockBookingRepo) FindInRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	if m.mockFindInRange != nil {
		return m.mockFindInRange(ctx, start, end)
	}
	return []models.Booking{}, nil
}

type mockLeaseRepo struct {
	repository.LeaseRepository
	mockFindByID            func(ctx context.Context, id uint) (*models.Lease, error)
	mockFindByIDWithDetails func(ctx context.Context, id uint) (*models.Lease, error)
	mockUpdate              func(ctx context.Context, lease *models.Lease) error
	mockFindOverlapping     func(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Lease, error)
	mockFindInWindow        func(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Lease, error)
	mockFindExpiring        func(ctx context.Context, by time.Time) ([]models.Lease, error)
}

func (m *mockLeaseRepo) FindByID(ctx context.Context, id uint) (*models.Lease, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaseRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.Lease, error) {
	if m.mockFindByIDWithDetails != nil {
		return m.mockFindByIDWithDetails(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaseRepo) Update(ctx context.Context, lease *models.Lease) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, lease)
	}
	return nil
}

func (m *mockLeaseRepo) FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Lease, error) {
	if m.mockFindOverlapping != nil {
		return m.mockFindOverlapping(ctx, propertyID, start, end)
	}
	return []models.Lease{}, nil
}

func (m *mockLeaseRepo) FindInWindow(ctx context.Context, propertyIDs []uint, start, end time.Time) ([]models.Lease, error) {
	if m.mockFindInWindow != nil {
		return m.mockFindInWindow(ctx, propertyIDs, start, end)
	}
	return []models.Lease{}, nil
}

func (m *mockLeaseRepo) FindExpiring(ctx context.Context, by time.Time) ([]models.Lease, error) {
	if m.mockFindExpiring != nil {
		return m.mockFindExpiring(ctx, by)
	}
	return []models.Lease{}, nil
}

// mockReportCache implements the full cache interface. By default every Get
// misses, so services under test recompute instead of serving cached data.
type mockReportCache struct {
	mockGet func(ctx context.Context, key string) (*models.ReportCache, error)
	mockSet func(ctx context.Context, key string, data interface{}, ttl time.Duration) error

	mu           sync.Mutex
	setKeys      []string
	invalidated  int
	cleanupCalls int
}

func (m *mockReportCache) Get(ctx context.Context, key string) (*models.ReportCache, error) {
	if m.mockGet != nil {
		return m.mockGet(ctx, key)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	m.mu.Lock()
	m.setKeys = append(m.setKeys, key)
	m.mu.Unlock()
	if m.mockSet != nil {
		return m.mockSet(ctx, key, data, ttl)
	}
	return nil
}

func (m *mockReportCache) InvalidateAll(ctx context.Context) error {
	m.mu.Lock()
	m.invalidated++
	m.mu.Unlock()
	return nil
}

func (m *mockReportCache) CleanExpired(ctx context.Context) error {
	m.mu.Lock()
	m.cleanupCalls++
	m.mu.Unlock()
	return nil
}

func (m *mockReportCache) invalidations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidated
}

// mockNotificationRepo captures created notifications. Transition paths fan
// out to admins from worker goroutines, so access is locked.
type mockNotificationRepo struct {
	repository.NotificationRepository

	mu      sync.Mutex
	created []models.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *notification)
	return nil
}

func (m *mockNotificationRepo) all() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, len(m.created))
	copy(out, m.created)
	return out
}

// mockAuditLogRepo captures audit entries written by the services
type mockAuditLogRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (m *mockAuditLogRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditLogRepo) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AuditLog, len(m.entries))
	copy(out, m.entries)
	return out, int64(len(out)), nil
}

func (m *mockAuditLogRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}
