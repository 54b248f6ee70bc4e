package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListUserFilter narrows the admin user listing.
type ListUserFilter struct {
	Role   Role
	Active *bool
	Search string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	List(ctx context.Context, db *gorm.DB, filter ListUserFilter, page pagination.Pagination) ([]*User, int64, error)
	Update(ctx context.Context, db *gorm.DB, user *User) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type SessionRepository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error
	FindByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	Touch(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Revoke(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
