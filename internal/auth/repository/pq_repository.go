package repository

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/vidhost/internal/auth"
	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type authRepo struct {
	db *sqlx.DB
}

func NewAuthRepo(db *sqlx.DB) auth.Repository {
	return &authRepo{
		db: db,
	}
}

func (a *authRepo) GetPrincipalByID(ctx context.Context, userID uuid.UUID) (*models.Principal, error) {
	p := &models.Principal{}
	if err := a.db.QueryRowxContext(
		ctx,
		getPrincipalQuery,
		userID,
	).StructScan(p); err != nil {
		return nil, fmt.Errorf("failed to get user : %w", err)
	}
	return p, nil
}
