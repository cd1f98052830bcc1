package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/repository"
)

type taskListCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewTaskListCache creates a Redis-backed cache of per-user task listings.
// All operations are best-effort: cache failures are logged and swallowed so
// Redis outages degrade reads to the primary store instead of failing them.
func NewTaskListCache(client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.TaskListCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &taskListCache{
		client: client,
		prefix: "tasks:user:",
		ttl:    ttl,
		logger: logger,
	}
}

func (c *taskListCache) Get(ctx context.Context, userID int64) ([]domain.Task, bool) {
	result, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if err != redislib.Nil {
			c.logger.Warn("task list cache read failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, false
	}

	var tasks []domain.Task
	if err := json.Unmarshal([]byte(result), &tasks); err != nil {
		c.logger.Warn("task list cache entry corrupt, dropping", zap.Int64("user_id", userID), zap.Error(err))
		c.Invalidate(ctx, userID)
		return nil, false
	}
	return tasks, true
}

func (c *taskListCache) Set(ctx context.Context, userID int64, tasks []domain.Task) {
	payload, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(userID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("task list cache write failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (c *taskListCache) Invalidate(ctx context.Context, userID int64) {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		c.logger.Warn("task list cache invalidation failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (c *taskListCache) key(userID int64) string {
	return fmt.Sprintf("%s%d", c.prefix, userID)
}
