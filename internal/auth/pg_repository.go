package auth

import (
	"context"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	GetPrincipalByID(ctx context.Context, userID uuid.UUID) (*models.Principal, error)
}
