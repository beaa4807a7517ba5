package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/tienda/pkg/config"
	"github.com/example/tienda/pkg/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// unlockScript deletes the lock only when it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

func (r *RedisRepository) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := r.GetJSON(ctx, productKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisRepository) SetProduct(ctx context.Context, p *models.Product) error {
	ttl := r.config.ProductTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return r.SetJSON(ctx, productKey(p.ID), p, ttl)
}

func (r *RedisRepository) InvalidateProduct(ctx context.Context, id int) error {
	return r.Del(ctx, productKey(id))
}

// Lock takes key for ttl. The returned release func is safe to call after
// the lock has expired.
func (r *RedisRepository) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, "lock:"+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: %w", key, ErrLocked)
	}
	return func() {
		_ = unlockScript.Run(context.Background(), r.client, []string{"lock:" + key}, token).Err()
	}, nil
}
