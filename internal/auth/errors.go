package auth

import "errors"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
	ErrInactiveUser = errors.New("user is not active")
	ErrUnknownUser  = errors.New("user not found")
)
