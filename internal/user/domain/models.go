// Package domain contains core types for user accounts and sessions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the access level of an account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
)

// rolesImplied maps each role to the set of roles it may act as.
var rolesImplied = map[Role][]Role{
	RoleAdmin:    {RoleAdmin, RoleManager, RoleOperator},
	RoleManager:  {RoleManager, RoleOperator},
	RoleOperator: {RoleOperator},
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	_, ok := rolesImplied[r]
	return ok
}

// Can reports whether r covers the required role. Admin implies manager and
// operator; manager implies operator.
func (r Role) Can(required Role) bool {
	for _, implied := range rolesImplied[r] {
		if implied == required {
			return true
		}
	}
	return false
}

// User represents a system user account.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;type:text;not null" json:"-"`
	Role         Role         `gorm:"type:text;not null;default:'operator';index" json:"role"`
	Active       bool         `gorm:"not null;default:true;index" json:"active"`
	LastLoginAt  *time.Time   `gorm:"column:last_login_at" json:"last_login_at"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// PublicUser is the outward representation of an account. It has no password
// field at all, so no call site can leak the hash.
type PublicUser struct {
	ID          snowflake.ID `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	Active      bool         `json:"active"`
	LastLoginAt *time.Time   `json:"last_login_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PublicView strips credentials from the account.
func (u User) PublicView() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Session represents a persisted login session.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index"`
	TokenHash string       `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt *time.Time   `gorm:"column:revoked_at"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeen  time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// Requester is the authenticated identity under which an operation executes.
type Requester struct {
	ID     snowflake.ID
	Role   Role
	Active bool
}

// IsAdmin reports whether the requester holds the admin role.
func (r Requester) IsAdmin() bool { return r.Role == RoleAdmin }
