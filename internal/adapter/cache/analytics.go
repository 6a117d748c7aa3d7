package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AnalyticsCache drops cached order aggregates after a mutation so
// dashboards re-read fresh numbers. Keys follow
// analytics:{workspace}:{window}:{bucket}.
type AnalyticsCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewAnalyticsCache(addr string, logger *zap.Logger) (*AnalyticsCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &AnalyticsCache{
		client: client,
		logger: logger.Named("cache"),
	}, nil
}

func (c *AnalyticsCache) InvalidateOrders(ctx context.Context, workspaceID uint64, at time.Time) error {
	day := at.Format("2006-01-02")
	year, week := at.ISOWeek()
	keys := []string{
		fmt.Sprintf("analytics:%d:day:%s", workspaceID, day),
		fmt.Sprintf("analytics:%d:week:%d-W%02d", workspaceID, year, week),
		fmt.Sprintf("analytics:%d:month:%s", workspaceID, at.Format("2006-01")),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate analytics keys: %w", err)
	}
	c.logger.Debug("analytics cache invalidated", zap.Uint64("workspace", workspaceID))
	return nil
}

func (c *AnalyticsCache) Close() error {
	return c.client.Close()
}
