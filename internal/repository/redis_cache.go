package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	snapshotKeyPrefix = "guided_session:"
	scanBatchSize     = 100
)

var ErrCacheMiss = errors.New("cache miss")

// RedisCacheRepository stores JSON values in Redis: catalog cache entries and
// guided session snapshots. Every call is traced.
type RedisCacheRepository struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
		tracer: otel.Tracer("redis"),
	}
}

func (r *RedisCacheRepository) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", op),
	)
	return r.tracer.Start(ctx, "redis."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// Get decodes the value at key into dest. A missing key yields ErrCacheMiss.
func (r *RedisCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	ctx, span := r.startSpan(ctx, "Get", attribute.String("cache.key", key))
	defer span.End()

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return ErrCacheMiss
	case err != nil:
		span.RecordError(err)
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))

	if err := json.Unmarshal(raw, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Set stores value as JSON. A zero ttl keeps the key forever.
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	ctx, span := r.startSpan(ctx, "Set",
		attribute.String("cache.key", key),
		attribute.String("cache.ttl", ttl.String()),
	)
	defer span.End()

	raw, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, span := r.startSpan(ctx, "Del", attribute.Int("cache.keys", len(keys)))
	defer span.End()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// InvalidatePrefix deletes every key starting with prefix, one SCAN page at a
// time. It walks the whole keyspace, so keep it off hot paths.
func (r *RedisCacheRepository) InvalidatePrefix(ctx context.Context, prefix string) error {
	ctx, span := r.startSpan(ctx, "InvalidatePrefix", attribute.String("cache.prefix", prefix))
	defer span.End()

	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("redis scan %s*: %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				span.RecordError(err)
				return fmt.Errorf("redis del: %w", err)
			}
			removed += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	span.SetAttributes(attribute.Int("cache.removed", removed))
	return nil
}

func snapshotKey(sessionID string) string {
	return snapshotKeyPrefix + sessionID
}

// SaveSnapshot stores the resumable state of a guided session.
func (r *RedisCacheRepository) SaveSnapshot(ctx context.Context, snapshot *domain.SessionSnapshot, ttl time.Duration) error {
	return r.Set(ctx, snapshotKey(snapshot.ID), snapshot, ttl)
}

// GetSnapshot returns domain.ErrSessionNotFound when no snapshot exists or it expired.
func (r *RedisCacheRepository) GetSnapshot(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	snapshot := new(domain.SessionSnapshot)
	err := r.Get(ctx, snapshotKey(sessionID), snapshot)
	if errors.Is(err, ErrCacheMiss) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *RedisCacheRepository) DeleteSnapshot(ctx context.Context, sessionID string) error {
	return r.Delete(ctx, snapshotKey(sessionID))
}
