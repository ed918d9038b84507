package videos

import (
	"context"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/google/uuid"
)

// UseCase methods other than UploadVideo read the principal from ctx.
type UseCase interface {
	UploadVideo(ctx context.Context, req *models.UploadRequest) (*models.Video, error)
	UploadThumbnail(ctx context.Context, file *models.UploadFile) (string, error)
	DeleteFile(ctx context.Context, kind AssetKind, name string) error
	CreateVideo(ctx context.Context, draft *models.VideoDraft) (*models.Video, error)
	GetVideo(ctx context.Context, videoID int64) (*models.Video, error)
	ListVideos(ctx context.Context, filter *models.VideoFilter, pq *utils.Pagination) (*models.VideoList, error)
	ListUserVideos(ctx context.Context, userID uuid.UUID, status models.VideoStatus, pq *utils.Pagination) (*models.VideoList, error)
	UpdateVideo(ctx context.Context, videoID int64, update *models.VideoUpdate) (*models.Video, error)
	DeleteVideo(ctx context.Context, videoID int64) error
	LikeVideo(ctx context.Context, videoID int64) error
	UnlikeVideo(ctx context.Context, videoID int64) error
}
