package videos

import (
	"context"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/google/uuid"
)

type Repository interface {
	CreateVideo(ctx context.Context, video *models.Video) (*models.Video, error)
	GetVideoByID(ctx context.Context, videoID int64) (*models.Video, error)
	GetVideoByAssetURL(ctx context.Context, url string) (*models.Video, error)
	ListVideos(ctx context.Context, filter *models.VideoFilter, pq *utils.Pagination) (*models.VideoList, error)
	ListUserVideos(ctx context.Context, userID uuid.UUID, status models.VideoStatus, pq *utils.Pagination) (*models.VideoList, error)
	UpdateVideo(ctx context.Context, videoID int64, update *models.VideoUpdate) (*models.Video, error)
	DeleteVideo(ctx context.Context, videoID int64) error
	IncrementViews(ctx context.Context, videoID int64) error
	LikeVideo(ctx context.Context, videoID int64, userID uuid.UUID) error
	UnlikeVideo(ctx context.Context, videoID int64, userID uuid.UUID) error
}
