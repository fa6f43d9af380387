// Package cache is the Redis-backed read cache. It serves display reads
// only; balance checks and limit checks always go to storage. Every cache
// failure degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ReadCache is a best-effort key/value cache for read paths.
type ReadCache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) bool
	// Set stores value for ttl. A zero ttl uses the cache default.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string)
}

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
		logger: logger,
	}
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("cache value undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache value unencodable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// DeletePrefix walks the keyspace with SCAN and deletes in batches. The
// prefix is matched literally.
func (s *CacheService) DeletePrefix(ctx context.Context, prefix string) {
	iter := s.client.Scan(ctx, 0, globEscaper.Replace(prefix)+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			s.Delete(ctx, batch...)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
	}
	s.Delete(ctx, batch...)
}

// globEscaper quotes the characters SCAN MATCH treats as patterns.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}

// Noop is a ReadCache that never hits. It is used when Redis is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) bool           { return false }
func (Noop) Set(context.Context, string, interface{}, time.Duration) {}
func (Noop) Delete(context.Context, ...string)                       {}
func (Noop) DeletePrefix(context.Context, string)                    {}
