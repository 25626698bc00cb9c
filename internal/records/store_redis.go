package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"buslink/pkg/sentinel"
)

var redisOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "buslink_record_store_redis_op_duration_ms",
	Help:    "Latency of redis record store operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
}, []string{"op"})

// scanBatch bounds how many keys one SCAN iteration asks Redis for.
const scanBatch = 100

// RedisStore is the Redis-backed record store. This is the recommended
// backend for deployments with more than one server instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client; the client lifecycle is managed by
// the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	defer observeRedis("set", time.Now())

	if err := s.client.Set(ctx, key, []byte(value), 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	defer observeRedis("get", time.Now())

	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return json.RawMessage(value), nil
}

func (s *RedisStore) Scan(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	defer observeRedis("scan", time.Now())

	var keys []string
	var cursor uint64
	match := globEscape(prefix) + "*"
	for {
		batch, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %q: %w", prefix, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	results := make([]json.RawMessage, 0, len(keys))
	if len(keys) == 0 {
		return results, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for _, v := range values {
		// A key deleted between SCAN and MGET comes back nil; skip it.
		str, ok := v.(string)
		if !ok {
			continue
		}
		results = append(results, json.RawMessage(str))
	}
	return results, nil
}

// globEscape neutralizes glob metacharacters so a prefix containing them
// matches literally in SCAN MATCH patterns.
func globEscape(s string) string {
	replacer := strings.NewReplacer(
		`*`, `\*`,
		`?`, `\?`,
		`[`, `\[`,
		`]`, `\]`,
		`\`, `\\`,
	)
	return replacer.Replace(s)
}

func observeRedis(op string, start time.Time) {
	redisOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
