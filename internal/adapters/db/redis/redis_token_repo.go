package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshPrefix = "rt:"
	accessPrefix  = "at:"
)

type RedisTokenRepo struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisTokenRepo(client *redis.Client) *RedisTokenRepo {
	return &RedisTokenRepo{
		client: client,
		now:    time.Now,
	}
}

func (r *RedisTokenRepo) Revoke(ctx context.Context, jti string, exp time.Time) error {
	return r.revoke(ctx, refreshPrefix+jti, exp)
}

func (r *RedisTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.exists(ctx, refreshPrefix+jti)
}

func (r *RedisTokenRepo) RevokeAccess(ctx context.Context, jti string, exp time.Time) error {
	return r.revoke(ctx, accessPrefix+jti, exp)
}

func (r *RedisTokenRepo) IsAccessRevoked(ctx context.Context, jti string) (bool, error) {
	return r.exists(ctx, accessPrefix+jti)
}

func (r *RedisTokenRepo) revoke(ctx context.Context, key string, exp time.Time) error {
	ttl, ok := r.ttl(exp)
	if !ok {
		// already expired, the verifier rejects it anyway
		return nil
	}
	return r.client.Set(ctx, key, 1, ttl).Err()
}

func (r *RedisTokenRepo) exists(ctx context.Context, key string) (bool, error) {
	err := r.client.Get(ctx, key).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		// fail closed
		return true, err
	default:
		return true, nil
	}
}

// ttl returns 0 (no expiry) for tokens that never expire.
func (r *RedisTokenRepo) ttl(exp time.Time) (time.Duration, bool) {
	if exp.IsZero() {
		return 0, true
	}
	ttl := exp.Sub(r.now())
	if ttl <= 0 {
		return 0, false
	}
	return ttl, true
}
