package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/labstack/echo/v4"
)

type UserCtxKey struct{}

// WithPrincipal stores the authenticated principal in ctx.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, UserCtxKey{}, p)
}

func GetPrincipalFromCtx(ctx context.Context) (*models.Principal, error) {
	principal, ok := ctx.Value(UserCtxKey{}).(*models.Principal)
	if !ok || principal == nil {
		return nil, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}

func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func GetIPAddress(c echo.Context) string {
	return c.Request().RemoteAddr
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
