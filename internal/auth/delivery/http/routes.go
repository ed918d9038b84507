package http

import (
	"github.com/amankumarsingh77/vidhost/internal/auth"
	"github.com/amankumarsingh77/vidhost/internal/middleware"
	"github.com/labstack/echo/v4"
)

func MapAuthRoutes(authGroup *echo.Group, h auth.Handler, mw *middleware.MiddlewareManager) {
	authGroup.POST("/logout", h.Logout(), mw.AuthJWTMiddleware())
}
