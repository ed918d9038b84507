package http

import (
	"github.com/amankumarsingh77/vidhost/internal/middleware"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func MapVideoRoutes(videoGroup *echo.Group, uploadGroup *echo.Group, h videos.Handler, mw *middleware.MiddlewareManager, bodyLimit string) {
	uploadGroup.Use(mw.AuthJWTMiddleware(), echomw.BodyLimit(bodyLimit))
	uploadGroup.POST("/video", h.UploadVideo())
	uploadGroup.POST("/thumbnail", h.UploadThumbnail())
	uploadGroup.DELETE("/file/:type/:filename", h.DeleteFile())

	videoGroup.GET("", h.ListVideos())
	videoGroup.POST("", h.CreateVideo(), mw.AuthJWTMiddleware())
	videoGroup.GET("/:id", h.GetVideoByID())
	videoGroup.GET("/user/:user_id", h.ListUserVideos(), mw.OptionalAuthMiddleware())
	videoGroup.PUT("/:id", h.UpdateVideo(), mw.AuthJWTMiddleware())
	videoGroup.DELETE("/:id", h.DeleteVideo(), mw.AuthJWTMiddleware())
	videoGroup.POST("/:id/like", h.LikeVideo(), mw.AuthJWTMiddleware())
	videoGroup.DELETE("/:id/like", h.UnlikeVideo(), mw.AuthJWTMiddleware())
}
