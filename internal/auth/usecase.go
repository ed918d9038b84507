package auth

import (
	"context"

	"github.com/amankumarsingh77/vidhost/internal/models"
)

type UseCase interface {
	// Authenticate resolves a bearer token to an active principal.
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
	Logout(ctx context.Context, token string) error
}
