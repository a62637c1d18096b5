package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mansoorceksport/repflow/internal/domain"
)

const (
	exerciseByIDKeyPrefix   = "exercise:id:"
	exerciseListKeyPrefix   = "exercise:list:"
	defaultExerciseCacheTTL = 10 * time.Minute
)

// CachedExerciseRepository wraps MongoExerciseRepository with Redis caching.
// The exercise library changes rarely and is read on every session start.
type CachedExerciseRepository struct {
	mongo *MongoExerciseRepository
	cache *RedisCacheRepository
	ttl   time.Duration
}

// NewCachedExerciseRepository creates a new cached exercise repository
func NewCachedExerciseRepository(mongo *MongoExerciseRepository, cache *RedisCacheRepository, ttl time.Duration) *CachedExerciseRepository {
	if ttl <= 0 {
		ttl = defaultExerciseCacheTTL
	}
	return &CachedExerciseRepository{
		mongo: mongo,
		cache: cache,
		ttl:   ttl,
	}
}

// GetByID retrieves an exercise with caching
func (r *CachedExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	key := exerciseByIDKeyPrefix + id

	// Try cache first
	var exercise domain.Exercise
	if err := r.cache.Get(ctx, key, &exercise); err == nil {
		return &exercise, nil
	}

	// Cache miss - fetch from MongoDB
	result, err := r.mongo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, result, r.ttl)

	return result, nil
}

// List retrieves exercises matching filter with caching
func (r *CachedExerciseRepository) List(ctx context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	key := exerciseListKeyPrefix + filterKey(filter)

	var exercises []*domain.Exercise
	if err := r.cache.Get(ctx, key, &exercises); err == nil {
		return exercises, nil
	}

	result, err := r.mongo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, key, result, r.ttl)

	return result, nil
}

// Create creates an exercise and invalidates cached lists
func (r *CachedExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	if err := r.mongo.Create(ctx, exercise); err != nil {
		return err
	}

	_ = r.cache.InvalidatePrefix(ctx, exerciseListKeyPrefix)
	return nil
}

// Update updates an exercise and invalidates its caches
func (r *CachedExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if err := r.mongo.Update(ctx, exercise); err != nil {
		return err
	}

	_ = r.cache.Delete(ctx, exerciseByIDKeyPrefix+exercise.ID)
	_ = r.cache.InvalidatePrefix(ctx, exerciseListKeyPrefix)
	return nil
}

// filterKey renders filter deterministically, e.g. "name=bench|type=weight".
func filterKey(filter map[string]interface{}) string {
	if len(filter) == 0 {
		return "all"
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, filter[k]))
	}
	return strings.ToLower(strings.Join(parts, "|"))
}
