package middleware

import (
	"time"

	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/labstack/echo/v4"
)

// RequestLoggerMiddleware logs one line per request.
func (mw *MiddlewareManager) RequestLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		req := c.Request()
		res := c.Response()
		mw.logger.Infow("request",
			"request_id", utils.GetRequestID(c),
			"method", req.Method,
			"uri", req.RequestURI,
			"status", res.Status,
			"size", res.Size,
			"remote_ip", utils.GetIPAddress(c),
			"time", time.Since(start).String(),
		)
		return err
	}
}
