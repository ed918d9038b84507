package usecase

import (
	"context"
	"database/sql"
	"path"
	"strings"

	"github.com/amankumarsingh77/vidhost/internal/config"
	"github.com/amankumarsingh77/vidhost/internal/metrics"
	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/amankumarsingh77/vidhost/pkg/httpErrors"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const deleteFilesTimeout = cleanupTimeout

var sortColumns = map[string]bool{
	"created_at": true,
	"views":      true,
	"likes":      true,
	"title":      true,
}

type videoUC struct {
	cfg       *config.Config
	videoRepo videos.Repository
	redisRepo videos.RedisRepository
	storage   videos.Storage
	pipeline  videos.Pipeline
	logger    logger.Logger
}

func NewVideoUseCase(
	cfg *config.Config,
	videoRepo videos.Repository,
	redisRepo videos.RedisRepository,
	storage videos.Storage,
	pipeline videos.Pipeline,
	log logger.Logger,
) videos.UseCase {
	return &videoUC{
		cfg:       cfg,
		videoRepo: videoRepo,
		redisRepo: redisRepo,
		storage:   storage,
		pipeline:  pipeline,
		logger:    log,
	}
}

func (u *videoUC) principal(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	if p != nil {
		return p, nil
	}
	p, err := utils.GetPrincipalFromCtx(ctx)
	if err != nil {
		return nil, httpErrors.ErrUnauthorized
	}
	return p, nil
}

// invalidate drops cached entries touched by a write. Failures are logged only.
func (u *videoUC) invalidate(ctx context.Context, videoID int64) {
	ctx = context.WithoutCancel(ctx)
	if err := u.redisRepo.DeleteCtx(ctx, videos.VideoKey(videoID)); err != nil {
		metrics.CacheErrors.WithLabelValues("delete").Inc()
		u.logger.Warnw("cache invalidate failed", "video_id", videoID, "error", err)
	}
	if _, err := u.redisRepo.DeletePatternCtx(ctx, videos.ListKeyPattern); err != nil {
		metrics.CacheErrors.WithLabelValues("delete_pattern").Inc()
		u.logger.Warnw("cache invalidate failed", "pattern", videos.ListKeyPattern, "error", err)
	}
}

// CreateVideo records a video whose media was produced outside the upload pipeline.
// The record starts as processing, so public listings skip it.
func (u *videoUC) CreateVideo(ctx context.Context, draft *models.VideoDraft) (*models.Video, error) {
	p, err := u.principal(ctx, nil)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, videos.ErrInvalidInput
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)
	if err = utils.ValidateStruct(ctx, draft); err != nil {
		return nil, errors.Wrap(videos.ErrInvalidInput, err.Error())
	}

	created, err := u.videoRepo.CreateVideo(ctx, &models.Video{
		UserID:       p.UserID,
		Title:        draft.Title,
		Description:  draft.Description,
		Category:     draft.Category,
		VideoURL:     draft.VideoURL,
		ThumbnailURL: draft.ThumbnailURL,
		Duration:     draft.Duration,
		Status:       models.VideoStatusProcessing,
	})
	if err != nil {
		return nil, errors.Wrap(err, "videoUC.CreateVideo.CreateVideo")
	}
	u.invalidate(ctx, created.VideoID)
	u.logger.Infow("audit", "event", "video_created", "video_id", created.VideoID, "user_id", p.UserID)
	return created, nil
}

func (u *videoUC) GetVideo(ctx context.Context, videoID int64) (*models.Video, error) {
	key := videos.VideoKey(videoID)
	video, err := u.redisRepo.GetVideoCtx(ctx, key)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		u.logger.Warnw("videoUC.GetVideo.GetVideoCtx", "key", key, "error", err)
	}
	if video == nil {
		video, err = u.videoRepo.GetVideoByID(ctx, videoID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, videos.ErrVideoNotFound
			}
			return nil, errors.Wrap(err, "videoUC.GetVideo.GetVideoByID")
		}
		if video.Status != models.VideoStatusPublished {
			return nil, videos.ErrVideoNotFound
		}
	}

	// Every read counts, cached or not. The cached copy is bumped alongside and never reconciled.
	if err = u.videoRepo.IncrementViews(ctx, videoID); err != nil {
		u.logger.Warnw("videoUC.GetVideo.IncrementViews", "video_id", videoID, "error", err)
	} else {
		video.Views++
	}

	if err = u.redisRepo.SetVideoCtx(ctx, key, u.cfg.Cache.VideoTTL, video); err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		u.logger.Warnw("videoUC.GetVideo.SetVideoCtx", "key", key, "error", err)
	}
	return video, nil
}

func normalizeFilter(f *models.VideoFilter) *models.VideoFilter {
	out := models.VideoFilter{}
	if f != nil {
		out = *f
	}
	out.Category = strings.TrimSpace(out.Category)
	out.Search = strings.TrimSpace(out.Search)
	if !sortColumns[out.SortBy] {
		out.SortBy = "created_at"
	}
	out.SortOrder = strings.ToLower(out.SortOrder)
	if out.SortOrder != "asc" {
		out.SortOrder = "desc"
	}
	if out.Status == "" {
		out.Status = models.VideoStatusPublished
	}
	return &out
}

func (u *videoUC) ListVideos(ctx context.Context, filter *models.VideoFilter, pq *utils.Pagination) (*models.VideoList, error) {
	filter = normalizeFilter(filter)
	key := videos.ListKey(pq.GetPage(), pq.GetSize(), filter)

	cached, err := u.redisRepo.GetListCtx(ctx, key)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		u.logger.Warnw("videoUC.ListVideos.GetListCtx", "key", key, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	list, err := u.videoRepo.ListVideos(ctx, filter, pq)
	if err != nil {
		return nil, errors.Wrap(err, "videoUC.ListVideos.ListVideos")
	}
	if err = u.redisRepo.SetListCtx(ctx, key, u.cfg.Cache.ListTTL, list); err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		u.logger.Warnw("videoUC.ListVideos.SetListCtx", "key", key, "error", err)
	}
	return list, nil
}

// ListUserVideos shows every status to the owner and admins, published only to others.
func (u *videoUC) ListUserVideos(ctx context.Context, userID uuid.UUID, status models.VideoStatus, pq *utils.Pagination) (*models.VideoList, error) {
	p, err := utils.GetPrincipalFromCtx(ctx)
	if err != nil || !p.CanModify(userID) {
		status = models.VideoStatusPublished
	}
	list, err := u.videoRepo.ListUserVideos(ctx, userID, status, pq)
	if err != nil {
		return nil, errors.Wrap(err, "videoUC.ListUserVideos.ListUserVideos")
	}
	return list, nil
}

func (u *videoUC) owned(ctx context.Context, videoID int64) (*models.Video, error) {
	p, err := u.principal(ctx, nil)
	if err != nil {
		return nil, err
	}
	video, err := u.videoRepo.GetVideoByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, videos.ErrVideoNotFound
		}
		return nil, errors.Wrap(err, "videoUC.owned.GetVideoByID")
	}
	if !p.CanModify(video.UserID) {
		return nil, videos.ErrForbidden
	}
	return video, nil
}

func (u *videoUC) UpdateVideo(ctx context.Context, videoID int64, update *models.VideoUpdate) (*models.Video, error) {
	if update == nil || update.Empty() {
		return nil, videos.ErrInvalidInput
	}
	if err := utils.ValidateStruct(ctx, update); err != nil {
		return nil, errors.Wrap(videos.ErrInvalidInput, err.Error())
	}
	if _, err := u.owned(ctx, videoID); err != nil {
		return nil, err
	}

	updated, err := u.videoRepo.UpdateVideo(ctx, videoID, update)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, videos.ErrVideoNotFound
		}
		return nil, errors.Wrap(err, "videoUC.UpdateVideo.UpdateVideo")
	}
	u.invalidate(ctx, videoID)
	return updated, nil
}

func (u *videoUC) DeleteVideo(ctx context.Context, videoID int64) error {
	video, err := u.owned(ctx, videoID)
	if err != nil {
		return err
	}
	if err = u.videoRepo.DeleteVideo(ctx, videoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return videos.ErrVideoNotFound
		}
		return errors.Wrap(err, "videoUC.DeleteVideo.DeleteVideo")
	}
	u.invalidate(ctx, videoID)

	// The row is gone; files go in the background.
	go u.removeFiles(context.WithoutCancel(ctx), video)
	return nil
}

func (u *videoUC) removeFiles(ctx context.Context, video *models.Video) {
	ctx, cancel := context.WithTimeout(ctx, deleteFilesTimeout)
	defer cancel()

	files := []struct {
		kind videos.AssetKind
		url  string
	}{
		{videos.AssetVideo, video.VideoURL},
		{videos.AssetThumbnail, video.ThumbnailURL},
	}
	for _, f := range files {
		name := path.Base(f.url)
		// Drafts may point at media this service never stored.
		if f.url == "" || u.storage.URL(f.kind, name) != f.url {
			continue
		}
		if err := u.storage.Remove(ctx, f.kind, name); err != nil {
			metrics.CleanupFailures.Inc()
			u.logger.Warnw("remove video file", "video_id", video.VideoID, "url", f.url, "error", err)
		}
	}
}

// DeleteFile removes one permanent file. A file a video points at needs that video's
// owner or an admin; a file no video points at needs an admin.
func (u *videoUC) DeleteFile(ctx context.Context, kind videos.AssetKind, name string) error {
	p, err := u.principal(ctx, nil)
	if err != nil {
		return err
	}
	if _, ok := videos.ParseAssetKind(string(kind)); !ok {
		return videos.ErrInvalidInput
	}
	exists, err := u.storage.Exists(ctx, kind, name)
	if err != nil {
		return errors.Wrap(err, "videoUC.DeleteFile.Exists")
	}
	if !exists {
		return videos.ErrFileNotFound
	}

	video, err := u.videoRepo.GetVideoByAssetURL(ctx, u.storage.URL(kind, name))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if !p.IsAdmin() {
			return videos.ErrForbidden
		}
	case err != nil:
		return errors.Wrap(err, "videoUC.DeleteFile.GetVideoByAssetURL")
	case !p.CanModify(video.UserID):
		return videos.ErrForbidden
	}

	if err = u.storage.Remove(ctx, kind, name); err != nil {
		return errors.Wrap(err, "videoUC.DeleteFile.Remove")
	}
	if video != nil {
		u.invalidate(ctx, video.VideoID)
	}
	u.logger.Infow("audit", "event", "file_deleted", "kind", kind, "name", name, "user_id", p.UserID)
	return nil
}

func (u *videoUC) LikeVideo(ctx context.Context, videoID int64) error {
	p, err := u.principal(ctx, nil)
	if err != nil {
		return err
	}
	if err = u.videoRepo.LikeVideo(ctx, videoID, p.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return videos.ErrVideoNotFound
		}
		return err
	}
	u.invalidate(ctx, videoID)
	return nil
}

func (u *videoUC) UnlikeVideo(ctx context.Context, videoID int64) error {
	p, err := u.principal(ctx, nil)
	if err != nil {
		return err
	}
	if err = u.videoRepo.UnlikeVideo(ctx, videoID, p.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return videos.ErrVideoNotFound
		}
		return err
	}
	u.invalidate(ctx, videoID)
	return nil
}
