package auth

import (
	"context"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/models"
)

type RedisRepository interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	GetPrincipalCtx(ctx context.Context, key string) (*models.Principal, error)
	SetPrincipalCtx(ctx context.Context, key string, ttl time.Duration, principal *models.Principal) error
}
