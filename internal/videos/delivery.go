package videos

import "github.com/labstack/echo/v4"

type Handler interface {
	UploadVideo() echo.HandlerFunc
	UploadThumbnail() echo.HandlerFunc
	DeleteFile() echo.HandlerFunc
	CreateVideo() echo.HandlerFunc
	GetVideoByID() echo.HandlerFunc
	ListVideos() echo.HandlerFunc
	ListUserVideos() echo.HandlerFunc
	UpdateVideo() echo.HandlerFunc
	DeleteVideo() echo.HandlerFunc
	LikeVideo() echo.HandlerFunc
	UnlikeVideo() echo.HandlerFunc
}
