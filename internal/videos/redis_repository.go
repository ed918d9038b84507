package videos

import (
	"context"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/models"
)

// RedisRepository is the result cache. Getters return nil, nil on a miss.
type RedisRepository interface {
	GetVideoCtx(ctx context.Context, key string) (*models.Video, error)
	SetVideoCtx(ctx context.Context, key string, ttl time.Duration, video *models.Video) error
	GetListCtx(ctx context.Context, key string) (*models.VideoList, error)
	SetListCtx(ctx context.Context, key string, ttl time.Duration, list *models.VideoList) error
	DeleteCtx(ctx context.Context, keys ...string) error
	DeletePatternCtx(ctx context.Context, pattern string) (int, error)
}
