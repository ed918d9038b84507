package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"

	"github.com/amankumarsingh77/vidhost/internal/config"
	"github.com/amankumarsingh77/vidhost/internal/media"
	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/amankumarsingh77/vidhost/pkg/httpErrors"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type videoHandler struct {
	cfg     *config.Config
	videoUC videos.UseCase
	logger  logger.Logger
}

func NewVideoHandler(cfg *config.Config, videoUC videos.UseCase, log logger.Logger) videos.Handler {
	return &videoHandler{
		cfg:     cfg,
		videoUC: videoUC,
		logger:  log,
	}
}

type videoResponse struct {
	ID           int64              `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Category     models.Category    `json:"category"`
	VideoURL     string             `json:"video_url"`
	ThumbnailURL string             `json:"thumbnail_url"`
	Duration     int64              `json:"duration"`
	FileSize     int64              `json:"file_size"`
	Status       models.VideoStatus `json:"status"`
}

type uploadResponse struct {
	Message string        `json:"message"`
	Video   videoResponse `json:"video"`
}

// catalogCtx bounds the non-upload handlers by the server's default request timeout.
func (h *videoHandler) catalogCtx(c echo.Context) (context.Context, context.CancelFunc) {
	if h.cfg.Server.CtxDefaultTimeout > 0 {
		return context.WithTimeout(c.Request().Context(), h.cfg.Server.CtxDefaultTimeout)
	}
	return context.WithCancel(c.Request().Context())
}

func firstValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func uploadFiles(form *multipart.Form) []*models.UploadFile {
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	files := make([]*models.UploadFile, 0, len(fields))
	for _, field := range fields {
		for _, fh := range form.File[field] {
			header := fh
			files = append(files, &models.UploadFile{
				Field:    field,
				Filename: header.Filename,
				MimeType: header.Header.Get(echo.HeaderContentType),
				Size:     header.Size,
				Open: func() (io.ReadCloser, error) {
					return header.Open()
				},
			})
		}
	}
	return files
}

// readForm parses the multipart body. Bodies over the configured limit map to PayloadTooLarge.
func readForm(c echo.Context) (*multipart.Form, error) {
	form, err := c.MultipartForm()
	if err == nil {
		return form, nil
	}
	var he *echo.HTTPError
	var mbe *http.MaxBytesError
	if (errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge) || errors.As(err, &mbe) {
		return nil, media.Reject(media.CodePayloadTooLarge, err.Error())
	}
	return nil, media.Reject(media.CodeNoVideoFile, err.Error())
}

func (h *videoHandler) UploadVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		principal, err := utils.GetPrincipalFromCtx(ctx)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewUnauthorizedError(nil)))
		}

		form, err := readForm(c)
		if err != nil {
			return h.fail(c, "videoHandler.UploadVideo.readForm", err)
		}
		defer form.RemoveAll()

		video, err := h.videoUC.UploadVideo(ctx, &models.UploadRequest{
			RequestID: utils.GetRequestID(c),
			Principal: principal,
			Input: models.UploadInput{
				Title:       firstValue(form, "title"),
				Description: firstValue(form, "description"),
				Category:    models.Category(firstValue(form, "category")),
			},
			Files: uploadFiles(form),
		})
		if err != nil {
			return h.fail(c, "videoHandler.UploadVideo", err)
		}

		return c.JSON(http.StatusCreated, uploadResponse{
			Message: "Video uploaded and processed successfully",
			Video: videoResponse{
				ID:           video.VideoID,
				Title:        video.Title,
				Description:  video.Description,
				Category:     video.Category,
				VideoURL:     video.VideoURL,
				ThumbnailURL: video.ThumbnailURL,
				Duration:     video.Duration,
				FileSize:     video.FileSize,
				Status:       video.Status,
			},
		})
	}
}

func (h *videoHandler) UploadThumbnail() echo.HandlerFunc {
	return func(c echo.Context) error {
		form, err := readForm(c)
		if err != nil {
			return h.fail(c, "videoHandler.UploadThumbnail.readForm", err)
		}
		defer form.RemoveAll()

		var file *models.UploadFile
		for _, f := range uploadFiles(form) {
			if f.Field != models.FieldThumbnail {
				return h.fail(c, "videoHandler.UploadThumbnail", media.Reject(media.CodeUnexpectedField, f.Field))
			}
			if file != nil {
				return h.fail(c, "videoHandler.UploadThumbnail", media.Reject(media.CodeTooManyFiles, f.Field))
			}
			file = f
		}

		url, err := h.videoUC.UploadThumbnail(c.Request().Context(), file)
		if err != nil {
			return h.fail(c, "videoHandler.UploadThumbnail", err)
		}
		return c.JSON(http.StatusOK, map[string]string{
			"message":       "Thumbnail uploaded successfully",
			"thumbnail_url": url,
		})
	}
}

func videoIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, videos.ErrInvalidInput
	}
	return id, nil
}

func (h *videoHandler) GetVideoByID() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := h.catalogCtx(c)
		defer cancel()

		videoID, err := videoIDParam(c)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError("Invalid video id", nil)))
		}
		video, err := h.videoUC.GetVideo(ctx, videoID)
		if err != nil {
			return h.fail(c, "videoHandler.GetVideoByID", err)
		}
		return c.JSON(http.StatusOK, video)
	}
}

func (h *videoHandler) ListVideos() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := h.catalogCtx(c)
		defer cancel()

		pq, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError(err.Error(), nil)))
		}
		list, err := h.videoUC.ListVideos(ctx, &models.VideoFilter{
			Category:  c.QueryParam("category"),
			Search:    c.QueryParam("search"),
			Status:    models.VideoStatus(c.QueryParam("status")),
			SortBy:    c.QueryParam("sort_by"),
			SortOrder: c.QueryParam("sort_order"),
		}, pq)
		if err != nil {
			return h.fail(c, "videoHandler.ListVideos", err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *videoHandler) ListUserVideos() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := h.catalogCtx(c)
		defer cancel()

		userID, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError("Invalid user id", nil)))
		}
		pq, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError(err.Error(), nil)))
		}
		list, err := h.videoUC.ListUserVideos(ctx, userID, models.VideoStatus(c.QueryParam("status")), pq)
		if err != nil {
			return h.fail(c, "videoHandler.ListUserVideos", err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *videoHandler) UpdateVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := h.catalogCtx(c)
		defer cancel()

		videoID, err := videoIDParam(c)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError("Invalid video id", nil)))
		}
		update := &models.VideoUpdate{}
		if err = c.Bind(update); err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError("Invalid request payload", nil)))
		}
		video, err := h.videoUC.UpdateVideo(ctx, videoID, update)
		if err != nil {
			return h.fail(c, "videoHandler.UpdateVideo", err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "Video updated successfully",
			"video":   video,
		})
	}
}

func (h *videoHandler) DeleteVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := h.catalogCtx(c)
		defer cancel()

		videoID, err := videoIDParam(c)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError("Invalid video id", nil)))
		}
		if err = h.videoUC.DeleteVideo(ctx, videoID); err != nil {
			return h.fail(c, "videoHandler.DeleteVideo", err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Video deleted successfully"})
	}
}

func (h *videoHandler) LikeVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := h.catalogCtx(c)
		defer cancel()

		videoID, err := videoIDParam(c)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError("Invalid video id", nil)))
		}
		if err = h.videoUC.LikeVideo(ctx, videoID); err != nil {
			return h.fail(c, "videoHandler.LikeVideo", err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Video liked successfully"})
	}
}

func (h *videoHandler) UnlikeVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := h.catalogCtx(c)
		defer cancel()

		videoID, err := videoIDParam(c)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError("Invalid video id", nil)))
		}
		if err = h.videoUC.UnlikeVideo(ctx, videoID); err != nil {
			return h.fail(c, "videoHandler.UnlikeVideo", err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Video unliked successfully"})
	}
}

func (h *videoHandler) CreateVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := h.catalogCtx(c)
		defer cancel()

		draft := &models.VideoDraft{}
		if err := c.Bind(draft); err != nil {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError("Invalid request payload", nil)))
		}
		video, err := h.videoUC.CreateVideo(ctx, draft)
		if err != nil {
			return h.fail(c, "videoHandler.CreateVideo", err)
		}
		return c.JSON(http.StatusCreated, map[string]interface{}{
			"message": "Video created successfully",
			"videoId": video.VideoID,
			"status":  video.Status,
		})
	}
}

func (h *videoHandler) DeleteFile() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := h.catalogCtx(c)
		defer cancel()

		kind, ok := videos.ParseAssetKind(c.Param("type"))
		if !ok {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewBadRequestError("Invalid file type", nil)))
		}
		if err := h.videoUC.DeleteFile(ctx, kind, c.Param("filename")); err != nil {
			return h.fail(c, "videoHandler.DeleteFile", err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "File deleted successfully"})
	}
}
