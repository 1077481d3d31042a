package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/route-agent/pkg/milestone"
)

const progressKeyPrefix = "progress:"

// RedisService implements the Storage interface using Redis
type RedisService struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisService implements Storage interface
var _ Storage = (*RedisService)(nil)

// NewRedisService creates a new Redis storage instance
func NewRedisService(redisURL string, logger *slog.Logger) *RedisService {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisService{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisService) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisService) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisService) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// SaveProgress writes a progress record. Records have no TTL; a run must
// survive arbitrary pauses between sessions.
func (r *RedisService) SaveProgress(ctx context.Context, ps *milestone.ProgressState) error {
	data, err := json.Marshal(ps)
	if err != nil {
		r.logger.Error("Failed to marshal progress", "run_id", ps.RunID, "error", err)
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	key := progressKeyPrefix + ps.RunID.String()
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save progress", "run_id", ps.RunID, "error", err)
		return fmt.Errorf("failed to save progress: %w", err)
	}

	return nil
}

func (r *RedisService) LoadProgress(ctx context.Context, runID uuid.UUID) (*milestone.ProgressState, error) {
	key := progressKeyPrefix + runID.String()
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Progress record not found", "run_id", runID)
			return nil, nil
		}
		r.logger.Error("Failed to load progress", "run_id", runID, "error", err)
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	var ps milestone.ProgressState
	if err := json.Unmarshal([]byte(cmd.Val()), &ps); err != nil {
		r.logger.Error("Failed to unmarshal progress", "run_id", runID, "error", err)
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}

	return &ps, nil
}

func (r *RedisService) DeleteProgress(ctx context.Context, runID uuid.UUID) error {
	key := progressKeyPrefix + runID.String()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete progress", "run_id", runID, "error", err)
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}
