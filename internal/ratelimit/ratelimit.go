package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
)

const keyNamespace = "shopmap:rl"

type (
	// Store counts hits per key inside a fixed window.
	Store interface {
		IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	}

	RedisStore struct {
		client *redis.Client
	}

	// Limiter throttles one surface (e.g. login) per client IP and per email.
	Limiter struct {
		name   string
		store  Store
		limit  int64
		window time.Duration
	}
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "incr rate limit counter")
	}
	// first hit opens the window
	if count == 1 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, errors.Wrap(err, "expire rate limit counter")
		}
	}
	return count, nil
}

// NewRedisClient returns nil when no address is configured.
func NewRedisClient(cfg *config.Config) *redis.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewLimiter(name string, store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{
		name:   strings.ToLower(strings.TrimSpace(name)),
		store:  store,
		limit:  int64(limit),
		window: window,
	}
}

// NewLoginLimiter is disabled when redis is not configured.
func NewLoginLimiter(cfg *config.Config, client *redis.Client) *Limiter {
	if client == nil {
		return NewLimiter("login", nil, 0, 0)
	}
	return NewLimiter("login", NewRedisStore(client), cfg.LoginRateLimit, cfg.LoginRateWindow)
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.store != nil && l.limit > 0 && l.window > 0
}

// Allow counts one attempt for every non-empty subject and reports whether
// all of them are still within the limit.
func (l *Limiter) Allow(ctx context.Context, ip, email string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	keys := make([]string, 0, 2)
	if ip = strings.TrimSpace(ip); ip != "" {
		keys = append(keys, fmt.Sprintf("%s:%s:ip:%s", keyNamespace, l.name, ip))
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		keys = append(keys, fmt.Sprintf("%s:%s:email:%s", keyNamespace, l.name, hashValue(email)))
	}

	allowed := true
	for _, key := range keys {
		count, err := l.store.IncrWithTTL(ctx, key, l.window)
		if err != nil {
			return false, err
		}
		if count > l.limit {
			allowed = false
		}
	}
	return allowed, nil
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
