package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"checkout-service/cache"
	"checkout-service/models"
)

// SettingsTag groups cached settings so an admin update can sweep them
// all in one invalidation.
const SettingsTag = "settings"

const settingsCacheTTL = 5 * time.Minute

// SettingsProvider exposes externally configured numeric rates such as
// the tax rate and shipping thresholds.
type SettingsProvider interface {
	GetValue(ctx context.Context, key string, defaultVal float64) float64
}

// GormSettingsRepository implements SettingsProvider over a settings
// table, with read-through caching.
type GormSettingsRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewGormSettingsRepository(db *gorm.DB, c *cache.Cache) SettingsProvider {
	return &GormSettingsRepository{db: db, cache: c}
}

// GetValue returns the configured value for key, or defaultVal when the
// key is absent or the store misbehaves. Settings lookups never fail
// checkout pricing; they fall back instead.
func (r *GormSettingsRepository) GetValue(ctx context.Context, key string, defaultVal float64) float64 {
	cacheKey := "settings:" + key

	var cached float64
	if r.cache.Get(ctx, cacheKey, &cached) {
		return cached
	}

	var setting models.Setting
	if err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Warn("settings lookup failed, using default",
				zap.String("key", key), zap.Error(err))
		}
		return defaultVal
	}

	_ = r.cache.Set(ctx, cacheKey, setting.Value, settingsCacheTTL, SettingsTag)
	return setting.Value
}
