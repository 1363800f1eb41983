package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

type settingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	List(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type settingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const settingCachePrefix = "settings:"

// SettingsService is the explicit business-configuration provider handed to
// the scheduling engine. Values are read through a TTL cache with
// caller-controlled lifetime; there is no package-level state and admin
// writes invalidate the cache.
type SettingsService struct {
	repo   settingRepository
	cache  settingCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewSettingsService constructs a settings provider. cache may be nil, in
// which case every read goes to the store.
func NewSettingsService(repo settingRepository, cache settingCache, ttl time.Duration, logger *zap.Logger) *SettingsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Value returns the raw string for key, or fallback when unset.
func (s *SettingsService) Value(ctx context.Context, key, fallback string) string {
	if s.cache != nil {
		var cached string
		if err := s.cache.Get(ctx, settingCachePrefix+key, &cached); err == nil {
			return cached
		}
	}

	value, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to read setting", zap.String("key", key), zap.Error(err))
		}
		return fallback
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingCachePrefix+key, value, s.ttl); err != nil {
			s.logger.Warn("failed to cache setting", zap.String("key", key), zap.Error(err))
		}
	}
	return value
}

// Int returns the integer value for key, or fallback when unset or invalid.
func (s *SettingsService) Int(ctx context.Context, key string, fallback int) int {
	raw := s.Value(ctx, key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("setting is not an integer", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return parsed
}

// Minutes returns the value for key interpreted as whole minutes.
func (s *SettingsService) Minutes(ctx context.Context, key string, fallback time.Duration) time.Duration {
	raw := s.Value(ctx, key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		s.logger.Warn("setting is not a minute count", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return time.Duration(parsed) * time.Minute
}

// List returns every stored setting.
func (s *SettingsService) List(ctx context.Context) ([]models.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	return settings, nil
}

// Set writes a setting and invalidates its cached value.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return appErrors.Clone(appErrors.ErrValidation, "setting key is required")
	}
	if err := s.repo.Upsert(ctx, key, value); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store setting")
	}
	s.invalidate(ctx, key)
	return nil
}

// Unset removes a setting and invalidates its cached value.
func (s *SettingsService) Unset(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete setting")
	}
	s.invalidate(ctx, key)
	return nil
}

func (s *SettingsService) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, settingCachePrefix+key); err != nil {
		s.logger.Warn("failed to invalidate setting cache", zap.String("key", key), zap.Error(err))
	}
}
