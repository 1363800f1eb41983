package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

type settingRepoStub struct {
	values map[string]string
	reads  int
}

func (s *settingRepoStub) Get(_ context.Context, key string) (string, error) {
	s.reads++
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", sql.ErrNoRows
}

func (s *settingRepoStub) List(_ context.Context) ([]models.Setting, error) {
	var out []models.Setting
	for k, v := range s.values {
		out = append(out, models.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (s *settingRepoStub) Upsert(_ context.Context, key, value string) error {
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

func (s *settingRepoStub) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

type settingCacheStub struct {
	values      map[string]string
	invalidated []string
}

func (s *settingCacheStub) Get(_ context.Context, key string, dest interface{}) error {
	if v, ok := s.values[key]; ok {
		*dest.(*string) = v
		return nil
	}
	return appErrors.ErrCacheMiss
}

func (s *settingCacheStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value.(string)
	return nil
}

func (s *settingCacheStub) DeleteByPattern(_ context.Context, pattern string) error {
	s.invalidated = append(s.invalidated, pattern)
	delete(s.values, pattern)
	return nil
}

func TestSettingsValueFallbackWhenUnset(t *testing.T) {
	svc := NewSettingsService(&settingRepoStub{}, nil, time.Minute, zap.NewNop())
	assert.Equal(t, "30", svc.Value(context.Background(), models.SettingSlotStepMinutes, "30"))
}

func TestSettingsValueFillsCacheOnMiss(t *testing.T) {
	repo := &settingRepoStub{values: map[string]string{"buffer_minutes": "15"}}
	cache := &settingCacheStub{}
	svc := NewSettingsService(repo, cache, time.Minute, zap.NewNop())

	assert.Equal(t, "15", svc.Value(context.Background(), "buffer_minutes", "0"))
	assert.Equal(t, 1, repo.reads)

	// Second read is served from cache.
	assert.Equal(t, "15", svc.Value(context.Background(), "buffer_minutes", "0"))
	assert.Equal(t, 1, repo.reads)
}

func TestSettingsSetInvalidatesCache(t *testing.T) {
	repo := &settingRepoStub{values: map[string]string{"buffer_minutes": "15"}}
	cache := &settingCacheStub{}
	svc := NewSettingsService(repo, cache, time.Minute, zap.NewNop())

	_ = svc.Value(context.Background(), "buffer_minutes", "0")
	require.NoError(t, svc.Set(context.Background(), "buffer_minutes", "20"))
	assert.Contains(t, cache.invalidated, "settings:buffer_minutes")
	assert.Equal(t, "20", svc.Value(context.Background(), "buffer_minutes", "0"))
}

func TestSettingsSetRequiresKey(t *testing.T) {
	svc := NewSettingsService(&settingRepoStub{}, nil, time.Minute, zap.NewNop())
	assert.Error(t, svc.Set(context.Background(), "", "x"))
}

func TestSettingsIntParsing(t *testing.T) {
	repo := &settingRepoStub{values: map[string]string{
		"good": "45",
		"bad":  "not-a-number",
	}}
	svc := NewSettingsService(repo, nil, time.Minute, zap.NewNop())

	assert.Equal(t, 45, svc.Int(context.Background(), "good", 60))
	assert.Equal(t, 60, svc.Int(context.Background(), "bad", 60))
	assert.Equal(t, 60, svc.Int(context.Background(), "missing", 60))
}

func TestSettingsMinutes(t *testing.T) {
	repo := &settingRepoStub{values: map[string]string{
		"ttl":      "90",
		"negative": "-5",
	}}
	svc := NewSettingsService(repo, nil, time.Minute, zap.NewNop())

	assert.Equal(t, 90*time.Minute, svc.Minutes(context.Background(), "ttl", time.Hour))
	assert.Equal(t, time.Hour, svc.Minutes(context.Background(), "negative", time.Hour))
	assert.Equal(t, time.Hour, svc.Minutes(context.Background(), "missing", time.Hour))
}

func TestSettingsUnset(t *testing.T) {
	repo := &settingRepoStub{values: map[string]string{"buffer_minutes": "15"}}
	cache := &settingCacheStub{}
	svc := NewSettingsService(repo, cache, time.Minute, zap.NewNop())

	require.NoError(t, svc.Unset(context.Background(), "buffer_minutes"))
	assert.Contains(t, cache.invalidated, "settings:buffer_minutes")
	assert.Equal(t, "0", svc.Value(context.Background(), "buffer_minutes", "0"))
}
