package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avaldes-dev/condoreserve/config"
	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	areasTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, areasTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		areasTTL: areasTTL,
	}
}

func (c *RedisCache) GetAreas(ctx context.Context) ([]domain.CommonArea, error) {
	data, err := c.client.Get(ctx, areasKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var areas []domain.CommonArea
	if err := json.Unmarshal(data, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

func (c *RedisCache) SetAreas(ctx context.Context, areas []domain.CommonArea) error {
	payload, err := json.Marshal(areas)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, areasKey(), payload, c.areasTTL).Err()
}

func (c *RedisCache) InvalidateAreas(ctx context.Context) error {
	return c.client.Del(ctx, areasKey()).Err()
}

// AcquireSlotLock takes a short-lived lock for one (area, date) pair. It is
// a fast-path guard in front of the transactional conflict check, not the
// correctness mechanism.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, areaID int64, date time.Time, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(areaID, date), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, areaID int64, date time.Time) error {
	return c.client.Del(ctx, slotLockKey(areaID, date)).Err()
}

func areasKey() string {
	return "cache:areas"
}

func slotLockKey(areaID int64, date time.Time) string {
	return fmt.Sprintf("lock:area:%d:date:%s", areaID, date.Format("2006-01-02"))
}
