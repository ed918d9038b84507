package http

import (
	"errors"
	"net/http"

	"github.com/amankumarsingh77/vidhost/internal/auth"
	"github.com/amankumarsingh77/vidhost/internal/config"
	"github.com/amankumarsingh77/vidhost/pkg/httpErrors"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/labstack/echo/v4"
)

type authHandler struct {
	cfg    *config.Config
	authUc auth.UseCase
	logger logger.Logger
}

func NewAuthHandler(cfg *config.Config, authUc auth.UseCase, logger logger.Logger) auth.Handler {
	return &authHandler{
		cfg:    cfg,
		authUc: authUc,
		logger: logger,
	}
}

func (h *authHandler) Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := utils.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewUnauthorizedError(nil)))
		}
		if err := h.authUc.Logout(c.Request().Context(), token); err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				return c.JSON(httpErrors.ErrorResponse(httpErrors.NewUnauthorizedError(nil)))
			}
			h.logger.Errorw("authHandler.Logout", "request_id", utils.GetRequestID(c), "error", err)
			return c.JSON(httpErrors.ErrorResponse(httpErrors.NewInternalServerError(nil)))
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
	}
}
