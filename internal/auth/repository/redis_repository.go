package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/auth"
	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/go-redis/redis/v8"
)

const blacklistPrefix = "blacklist:"

type authRedisRepo struct {
	redisClient *redis.Client
}

func NewAuthRedisRepo(redisClient *redis.Client) auth.RedisRepository {
	return &authRedisRepo{redisClient: redisClient}
}

// blacklistKey stores a digest so raw tokens never sit in redis.
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistPrefix + hex.EncodeToString(sum[:])
}

func (a *authRedisRepo) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := a.redisClient.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return n > 0, nil
}

func (a *authRedisRepo) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := a.redisClient.Set(ctx, blacklistKey(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (a *authRedisRepo) GetPrincipalCtx(ctx context.Context, key string) (*models.Principal, error) {
	data, err := a.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	p := &models.Principal{}
	if err = json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return p, nil
}

func (a *authRedisRepo) SetPrincipalCtx(ctx context.Context, key string, ttl time.Duration, principal *models.Principal) error {
	data, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err = a.redisClient.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
