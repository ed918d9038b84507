package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/amankumarsingh77/vidhost/internal/media"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/amankumarsingh77/vidhost/pkg/httpErrors"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/labstack/echo/v4"
)

// restError turns a use case error into the response body and status.
func (h *videoHandler) restError(err error) httpErrors.RestErr {
	var causes interface{}
	if !h.cfg.Server.Production() {
		causes = fmt.Sprintf("%+v", err)
	}

	if e, ok := media.AsError(err); ok {
		status := http.StatusInternalServerError
		code := media.CodeUploadFailed
		if e.Kind == media.KindValidation {
			status = http.StatusBadRequest
			code = e.Code
			if code == media.CodePayloadTooLarge {
				status = http.StatusRequestEntityTooLarge
			}
		}
		return httpErrors.NewRestError(status, string(code), code.Message(), causes)
	}

	switch {
	case errors.Is(err, videos.ErrVideoNotFound):
		return httpErrors.NewNotFoundError(videos.ErrVideoNotFound.Error())
	case errors.Is(err, videos.ErrFileNotFound):
		return httpErrors.NewNotFoundError(videos.ErrFileNotFound.Error())
	case errors.Is(err, videos.ErrForbidden):
		return httpErrors.NewForbiddenError(videos.ErrForbidden.Error())
	case errors.Is(err, videos.ErrAlreadyLiked), errors.Is(err, videos.ErrNotLiked), errors.Is(err, videos.ErrInvalidInput):
		return httpErrors.NewBadRequestError(err.Error(), nil)
	case errors.Is(err, httpErrors.ErrUnauthorized):
		return httpErrors.NewUnauthorizedError(nil)
	}
	return httpErrors.NewInternalServerError(causes)
}

func (h *videoHandler) fail(c echo.Context, op string, err error) error {
	restErr := h.restError(err)
	if restErr.Status() >= http.StatusInternalServerError {
		h.logger.Errorw(op, "request_id", utils.GetRequestID(c), "error", err)
	}
	return c.JSON(httpErrors.ErrorResponse(restErr))
}
