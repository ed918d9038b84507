package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var orderColumns = map[string]string{
	"created_at": "created_at",
	"views":      "views",
	"likes":      "likes",
	"title":      "title",
}

type videoRepo struct {
	db *sqlx.DB
}

func NewVideoRepo(db *sqlx.DB) videos.Repository {
	return &videoRepo{db: db}
}

func (v *videoRepo) CreateVideo(ctx context.Context, video *models.Video) (*models.Video, error) {
	tx, err := v.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	created := &models.Video{}
	if err = tx.QueryRowxContext(
		ctx,
		createVideoQuery,
		video.UserID,
		video.Title,
		video.Description,
		string(video.Category),
		video.VideoURL,
		video.ThumbnailURL,
		video.Duration,
		video.FileSize,
		string(video.Status),
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit video: %w", err)
	}
	return created, nil
}

func (v *videoRepo) GetVideoByID(ctx context.Context, videoID int64) (*models.Video, error) {
	video := &models.Video{}
	if err := v.db.QueryRowxContext(ctx, getVideoByIDQuery, videoID).StructScan(video); err != nil {
		return nil, fmt.Errorf("failed to get video by id: %w", err)
	}
	return video, nil
}

// GetVideoByAssetURL finds the video whose media or thumbnail is served at url.
func (v *videoRepo) GetVideoByAssetURL(ctx context.Context, url string) (*models.Video, error) {
	video := &models.Video{}
	if err := v.db.QueryRowxContext(ctx, getVideoByAssetURLQuery, url).StructScan(video); err != nil {
		return nil, fmt.Errorf("failed to get video by asset url: %w", err)
	}
	return video, nil
}

// whereClause builds a WHERE fragment with positional args starting at $1.
func whereClause(conds map[string]interface{}, order []string, search string) (string, []interface{}) {
	parts := make([]string, 0, len(order)+1)
	args := make([]interface{}, 0, len(order)+1)
	for _, col := range order {
		val, ok := conds[col]
		if !ok {
			continue
		}
		args = append(args, val)
		parts = append(parts, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if search != "" {
		args = append(args, search)
		parts = append(parts, fmt.Sprintf(searchVideosFragment, len(args), len(args)))
	}
	if len(parts) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func orderClause(sortBy, sortOrder string) string {
	col, ok := orderColumns[sortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
}

func (v *videoRepo) list(ctx context.Context, where string, args []interface{}, order string, pq *utils.Pagination) (*models.VideoList, error) {
	var totalCount int
	if err := v.db.GetContext(ctx, &totalCount, countVideosSelect+where, args...); err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}
	if totalCount == 0 {
		return &models.VideoList{
			Videos:   make([]*models.Video, 0),
			Page:     pq.GetPage(),
			PageSize: pq.GetSize(),
		}, nil
	}

	query := fmt.Sprintf("%s%s%s OFFSET $%d LIMIT $%d", listVideosSelect, where, order, len(args)+1, len(args)+2)
	rows, err := v.db.QueryxContext(ctx, query, append(args, pq.GetOffset(), pq.GetLimit())...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Video, 0, pq.GetSize())
	for rows.Next() {
		video := &models.Video{}
		if err = rows.StructScan(video); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		list = append(list, video)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan videos: %w", err)
	}

	return &models.VideoList{
		Videos:     list,
		TotalCount: totalCount,
		TotalPages: utils.GetTotalPages(totalCount, pq.GetSize()),
		Page:       pq.GetPage(),
		PageSize:   pq.GetSize(),
		HasMore:    utils.GetHasMore(pq.GetPage(), totalCount, pq.GetSize()),
	}, nil
}

func (v *videoRepo) ListVideos(ctx context.Context, filter *models.VideoFilter, pq *utils.Pagination) (*models.VideoList, error) {
	conds := map[string]interface{}{"status": string(filter.Status)}
	if filter.Category != "" {
		conds["category"] = filter.Category
	}
	where, args := whereClause(conds, []string{"status", "category"}, filter.Search)
	return v.list(ctx, where, args, orderClause(filter.SortBy, filter.SortOrder), pq)
}

// ListUserVideos lists one user's uploads. An empty status matches every status.
func (v *videoRepo) ListUserVideos(ctx context.Context, userID uuid.UUID, status models.VideoStatus, pq *utils.Pagination) (*models.VideoList, error) {
	conds := map[string]interface{}{"user_id": userID}
	if status != "" {
		conds["status"] = string(status)
	}
	where, args := whereClause(conds, []string{"user_id", "status"}, "")
	return v.list(ctx, where, args, orderClause("created_at", "desc"), pq)
}

func stringPtr[T ~string](p *T) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func (v *videoRepo) UpdateVideo(ctx context.Context, videoID int64, update *models.VideoUpdate) (*models.Video, error) {
	video := &models.Video{}
	if err := v.db.GetContext(
		ctx,
		video,
		updateVideoQuery,
		update.Title,
		update.Description,
		stringPtr(update.Category),
		stringPtr(update.Status),
		videoID,
	); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}
	return video, nil
}

func (v *videoRepo) DeleteVideo(ctx context.Context, videoID int64) error {
	res, err := v.db.ExecContext(ctx, deleteVideoQuery, videoID)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if count == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (v *videoRepo) IncrementViews(ctx context.Context, videoID int64) error {
	if _, err := v.db.ExecContext(ctx, incrementViewsQuery, videoID); err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// toggleLike applies one like edit and the matching counter change in a tx.
// noop is returned when the edit changed no rows.
func (v *videoRepo) toggleLike(ctx context.Context, videoID int64, userID uuid.UUID, edit, counter string, noop error) error {
	tx, err := v.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err = tx.GetContext(ctx, &exists, videoExistsQuery, videoID); err != nil {
		return fmt.Errorf("failed to check video: %w", err)
	}
	if !exists {
		return sql.ErrNoRows
	}

	res, err := tx.ExecContext(ctx, edit, userID, videoID)
	if err != nil {
		return fmt.Errorf("failed to edit like: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to edit like: %w", err)
	}
	if count == 0 {
		return noop
	}

	if _, err = tx.ExecContext(ctx, counter, videoID); err != nil {
		return fmt.Errorf("failed to update likes: %w", err)
	}
	return tx.Commit()
}

func (v *videoRepo) LikeVideo(ctx context.Context, videoID int64, userID uuid.UUID) error {
	return v.toggleLike(ctx, videoID, userID, insertLikeQuery, incrementLikesQuery, videos.ErrAlreadyLiked)
}

func (v *videoRepo) UnlikeVideo(ctx context.Context, videoID int64, userID uuid.UUID) error {
	return v.toggleLike(ctx, videoID, userID, deleteLikeQuery, decrementLikesQuery, videos.ErrNotLiked)
}
