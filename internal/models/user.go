package models

import (
	"github.com/google/uuid"
)

type Role string

const (
	AdminRole Role = "admin"
	UserRole  Role = "user"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   uuid.UUID  `json:"user_id" db:"user_id"`
	Username string     `json:"username" db:"username"`
	Role     Role       `json:"role" db:"role"`
	Status   UserStatus `json:"status" db:"status"`
}

func (p *Principal) IsAdmin() bool {
	return p.Role == AdminRole
}

// CanModify reports whether the principal owns the resource or is an admin.
func (p *Principal) CanModify(ownerID uuid.UUID) bool {
	return p.IsAdmin() || p.UserID == ownerID
}
