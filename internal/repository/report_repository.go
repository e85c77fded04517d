package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"gorm.io/gorm"
)

// ReportCacheRepository defines the interface for the occupancy report cache
type ReportCacheRepository interface {
	Get(ctx context.Context, key string) (*models.ReportCache, error)
	Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
	CleanExpired(ctx context.Context) error
}

type reportCacheRepository struct {
	db *gorm.DB
}

// NewReportCacheRepository creates a new report cache repository
func NewReportCacheRepository(db *gorm.DB) ReportCacheRepository {
	return &reportCacheRepository{db: db}
}

// Get returns the cached entry for the key, or gorm.ErrRecordNotFound when
// missing or expired
func (r *reportCacheRepository) Get(ctx context.Context, key string) (*models.ReportCache, error) {
	var cache models.ReportCache
	err := r.db.WithContext(ctx).
		Where("cache_key = ?", key).
		Where("expires_at > ?", time.Now()).
		First(&cache).Error
	if err != nil {
		return nil, err
	}
	return &cache, nil
}

// Set stores data under the key with the given TTL, upserting any previous
// entry
func (r *reportCacheRepository) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(ttl)

	var existing models.ReportCache
	err = r.db.WithContext(ctx).Where("cache_key = ?", key).First(&existing).Error
	if err == nil {
		return r.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
			"data":       jsonData,
			"expires_at": expiresAt,
			"updated_at": time.Now(),
		}).Error
	}

	cache := models.ReportCache{
		CacheKey:  key,
		Data:      jsonData,
		ExpiresAt: expiresAt,
	}
	return r.db.WithContext(ctx).Create(&cache).Error
}

// InvalidateAll drops every cached report. Called whenever a booking or lease
// mutation changes the underlying reservation data.
func (r *reportCacheRepository) InvalidateAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("cache_key IS NOT NULL").
		Delete(&models.ReportCache{}).Error
}

// CleanExpired removes entries past their TTL
func (r *reportCacheRepository) CleanExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.ReportCache{}).Error
}
