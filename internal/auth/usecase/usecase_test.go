package usecase

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/auth"
	"github.com/amankumarsingh77/vidhost/internal/config"
	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type fakeRepo struct {
	users map[uuid.UUID]*models.Principal
	calls int
}

func (r *fakeRepo) GetPrincipalByID(_ context.Context, id uuid.UUID) (*models.Principal, error) {
	r.calls++
	p, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

type fakeRedis struct {
	blacklist  map[string]time.Duration
	principals map[string]*models.Principal
	err        error
}

func (f *fakeRedis) IsBlacklisted(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.blacklist[token]
	return ok, nil
}

func (f *fakeRedis) Blacklist(_ context.Context, token string, ttl time.Duration) error {
	f.blacklist[token] = ttl
	return nil
}

func (f *fakeRedis) GetPrincipalCtx(_ context.Context, key string) (*models.Principal, error) {
	return f.principals[key], nil
}

func (f *fakeRedis) SetPrincipalCtx(_ context.Context, key string, _ time.Duration, p *models.Principal) error {
	f.principals[key] = p
	return nil
}

func setup(t *testing.T) (auth.UseCase, *fakeRepo, *fakeRedis, *models.Principal, string) {
	t.Helper()
	active := &models.Principal{UserID: uuid.New(), Username: "ann", Role: models.UserRole, Status: models.UserStatusActive}
	repo := &fakeRepo{users: map[uuid.UUID]*models.Principal{active.UserID: active}}
	cache := &fakeRedis{blacklist: map[string]time.Duration{}, principals: map[string]*models.Principal{}}
	cfg := &config.Config{
		Server: config.ServerConfig{JwtSecretKey: secret},
		Cache:  config.CacheConfig{UserTTL: time.Hour},
	}
	token, err := utils.GenerateJWTToken(active, secret)
	require.NoError(t, err)
	return NewAuthUseCase(cfg, repo, cache, logger.NewNopLogger()), repo, cache, active, token
}

func TestAuthenticate(t *testing.T) {
	uc, repo, _, active, token := setup(t)

	p, err := uc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, active.UserID, p.UserID)

	_, err = uc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "second lookup is served from cache")
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Run("bad signature", func(t *testing.T) {
		uc, _, _, active, _ := setup(t)
		forged, err := utils.GenerateJWTToken(active, "other-secret")
		require.NoError(t, err)
		_, err = uc.Authenticate(context.Background(), forged)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		uc, _, _, _, _ := setup(t)
		token, err := utils.GenerateJWTToken(&models.Principal{UserID: uuid.New()}, secret)
		require.NoError(t, err)
		_, err = uc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrUnknownUser)
	})

	t.Run("inactive user", func(t *testing.T) {
		uc, repo, _, active, token := setup(t)
		repo.users[active.UserID].Status = models.UserStatusBanned
		_, err := uc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrInactiveUser)
	})

	t.Run("blacklist unreachable", func(t *testing.T) {
		uc, _, cache, _, token := setup(t)
		cache.err = errors.New("redis down")
		_, err := uc.Authenticate(context.Background(), token)
		assert.Error(t, err)
	})
}

func TestLogout_RevokesToken(t *testing.T) {
	uc, _, cache, _, token := setup(t)

	require.NoError(t, uc.Logout(context.Background(), token))
	ttl, ok := cache.blacklist[token]
	require.True(t, ok)
	assert.InDelta(t, utils.TokenExpireDuration.Seconds(), ttl.Seconds(), 5)

	_, err := uc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)

	assert.ErrorIs(t, uc.Logout(context.Background(), "garbage"), auth.ErrInvalidToken)
}
