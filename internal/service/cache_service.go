package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/course-admin/pkg/errors"
)

// CacheRepository stores JSON payloads under string keys.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Counter(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// CacheService fronts the course list cache. A nil or disabled service behaves as an
// always-missing cache, and store failures never reach callers of ReadThrough.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled && repo != nil}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled
}

// Get loads key into dest and reports whether it was present.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		return false, nil
	default:
		s.logger.Warn("course cache read failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
}

// Set stores value under key. A ttl of zero uses the configured default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("course cache write failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate drops every key matching pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("course cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	s.metrics.RecordCacheInvalidation()
	return nil
}

// Generation returns the counter stored at key. ok is false when the cache is
// disabled or the counter cannot be read, in which case callers skip the cache.
func (s *CacheService) Generation(ctx context.Context, key string) (int64, bool) {
	if !s.Enabled() {
		return 0, false
	}
	generation, err := s.repo.Counter(ctx, key)
	if err != nil {
		s.logger.Warn("course cache generation read failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return generation, true
}

// Bump advances the counter stored at key.
func (s *CacheService) Bump(ctx context.Context, key string) {
	if !s.Enabled() {
		return
	}
	if _, err := s.repo.Incr(ctx, key); err != nil {
		s.logger.Warn("course cache generation bump failed", zap.String("key", key), zap.Error(err))
	}
}

// ReadThrough returns the cached value for key, or calls load and caches its result.
// Cache errors are logged and bypassed; load errors are returned as is.
func ReadThrough[T any](ctx context.Context, cache *CacheService, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if hit, _ := cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	_ = cache.Set(ctx, key, value, 0)
	return value, nil
}
