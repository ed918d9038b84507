package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/go-redis/redis/v8"
)

const scanBatch = 100

type videoRedisRepo struct {
	redisClient *redis.Client
}

func NewVideoRedisRepo(redisClient *redis.Client) videos.RedisRepository {
	return &videoRedisRepo{redisClient: redisClient}
}

func (r *videoRedisRepo) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err = json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (r *videoRedisRepo) set(ctx context.Context, key string, ttl time.Duration, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err = r.redisClient.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *videoRedisRepo) GetVideoCtx(ctx context.Context, key string) (*models.Video, error) {
	video := &models.Video{}
	found, err := r.get(ctx, key, video)
	if !found {
		return nil, err
	}
	return video, nil
}

func (r *videoRedisRepo) SetVideoCtx(ctx context.Context, key string, ttl time.Duration, video *models.Video) error {
	return r.set(ctx, key, ttl, video)
}

func (r *videoRedisRepo) GetListCtx(ctx context.Context, key string) (*models.VideoList, error) {
	list := &models.VideoList{}
	found, err := r.get(ctx, key, list)
	if !found {
		return nil, err
	}
	return list, nil
}

func (r *videoRedisRepo) SetListCtx(ctx context.Context, key string, ttl time.Duration, list *models.VideoList) error {
	return r.set(ctx, key, ttl, list)
}

func (r *videoRedisRepo) DeleteCtx(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// DeletePatternCtx collects every key matching pattern with SCAN, then deletes them in batches.
// Deleting while the cursor is still open can make some servers skip keys.
func (r *videoRedisRepo) DeletePatternCtx(ctx context.Context, pattern string) (int, error) {
	var keys []string
	iter := r.redisClient.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", pattern, err)
	}

	deleted := 0
	for len(keys) > 0 {
		n := min(scanBatch, len(keys))
		removed, err := r.redisClient.Del(ctx, keys[:n]...).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", pattern, err)
		}
		deleted += int(removed)
		keys = keys[n:]
	}
	return deleted, nil
}
