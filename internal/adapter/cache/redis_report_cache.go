package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sladash/sladash/internal/ports"
)

// RedisReportCache implements ReportCache on Redis. Reports are stored
// as JSON under "report:{datasetID}:..." keys so one SCAN pattern can
// drop everything a dataset change invalidates.
type RedisReportCache struct {
	client *redis.Client
}

// NewRedisReportCache creates a new Redis-backed report cache
func NewRedisReportCache(client *redis.Client) ports.ReportCache {
	return &RedisReportCache{client: client}
}

// Get loads a cached report into v; the bool reports a hit
func (c *RedisReportCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}
	return true, nil
}

// Set stores a computed report under key for ttl
func (c *RedisReportCache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// InvalidateDataset drops every cached report for a dataset, plus the
// cross-dataset overview pages that include it.
func (c *RedisReportCache) InvalidateDataset(ctx context.Context, datasetID string) error {
	patterns := []string{
		fmt.Sprintf("report:%s:*", datasetID),
		"report:overview:*",
	}

	for _, pattern := range patterns {
		iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("failed to drop cached report: %w", err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
	}
	return nil
}
