package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListOrderFilter narrows the order listing.
type ListOrderFilter struct {
	Status    OrderStatus
	Search    string
	DueAfter  *time.Time
	DueBefore *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListOrderFilter, page pagination.Pagination) ([]*Order, int64, error)
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Stats(ctx context.Context, db *gorm.DB) ([]StatusStat, error)
}
