package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"hr_training_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
)

// TrainingStatsCache 员工培训统计的 redis 缓存，Redis 为 nil 时所有操作都是空操作
type TrainingStatsCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewTrainingStatsCache(rdb *redis.Client, ttl time.Duration) *TrainingStatsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TrainingStatsCache{Redis: rdb, TTL: ttl}
}

func statsKey(employeeID string) string {
	return fmt.Sprintf("training:stats:%s", employeeID)
}

func (c *TrainingStatsCache) Get(ctx context.Context, employeeID string) (*model.TrainingStats, bool) {
	if c == nil || c.Redis == nil {
		return nil, false
	}
	val, err := c.Redis.Get(ctx, statsKey(employeeID)).Result()
	if err != nil {
		return nil, false
	}
	var stats model.TrainingStats
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// Set ttl 大于 0 且小于默认 TTL 时以 ttl 为准
func (c *TrainingStatsCache) Set(ctx context.Context, employeeID string, stats *model.TrainingStats, ttl time.Duration) error {
	if c == nil || c.Redis == nil {
		return nil
	}
	if ttl <= 0 || ttl > c.TTL {
		ttl = c.TTL
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, statsKey(employeeID), data, ttl).Err()
}

func (c *TrainingStatsCache) Invalidate(ctx context.Context, employeeID string) error {
	if c == nil || c.Redis == nil {
		return nil
	}
	return c.Redis.Del(ctx, statsKey(employeeID)).Err()
}
