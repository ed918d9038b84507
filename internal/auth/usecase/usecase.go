package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amankumarsingh77/vidhost/internal/auth"
	"github.com/amankumarsingh77/vidhost/internal/config"
	"github.com/amankumarsingh77/vidhost/internal/metrics"
	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/google/uuid"
)

const userPrefix = "user:"

type authUC struct {
	cfg       *config.Config
	authRepo  auth.Repository
	redisRepo auth.RedisRepository
	logger    logger.Logger
}

func NewAuthUseCase(cfg *config.Config, authRepo auth.Repository, redisRepo auth.RedisRepository, log logger.Logger) auth.UseCase {
	return &authUC{
		cfg:       cfg,
		authRepo:  authRepo,
		redisRepo: redisRepo,
		logger:    log,
	}
}

func userKey(userID uuid.UUID) string {
	return userPrefix + userID.String()
}

func (u *authUC) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := utils.ValidateToken(token, u.cfg.Server.JwtSecretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user_id claim", auth.ErrInvalidToken)
	}

	// Fails closed: a revoked token must not pass while redis is unreachable.
	revoked, err := u.redisRepo.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, auth.ErrRevokedToken
	}

	principal, err := u.principal(ctx, userID)
	if err != nil {
		return nil, err
	}
	if principal.Status != models.UserStatusActive {
		return nil, auth.ErrInactiveUser
	}
	return principal, nil
}

func (u *authUC) principal(ctx context.Context, userID uuid.UUID) (*models.Principal, error) {
	key := userKey(userID)
	cached, err := u.redisRepo.GetPrincipalCtx(ctx, key)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		u.logger.Warnw("authUC.principal.GetPrincipalCtx", "key", key, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	p, err := u.authRepo.GetPrincipalByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUnknownUser
		}
		return nil, err
	}
	if err = u.redisRepo.SetPrincipalCtx(ctx, key, u.cfg.Cache.UserTTL, p); err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		u.logger.Warnw("authUC.principal.SetPrincipalCtx", "key", key, "error", err)
	}
	return p, nil
}

// Logout revokes the token for the rest of its lifetime.
func (u *authUC) Logout(ctx context.Context, token string) error {
	claims, err := utils.ValidateToken(token, u.cfg.Server.JwtSecretKey)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if err = u.redisRepo.Blacklist(ctx, token, claims.TokenTTL()); err != nil {
		return err
	}
	u.logger.Infow("audit", "event", "logout", "user_id", claims.UserID)
	return nil
}
