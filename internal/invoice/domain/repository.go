package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListInvoiceFilter narrows the invoice listing.
type ListInvoiceFilter struct {
	Status      InvoiceStatus
	Type        InvoiceType
	Search      string
	IssuedAfter *time.Time
	IssuedUntil *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, int64, error)
	// Update persists the invoice and replaces its line items.
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Stats(ctx context.Context, db *gorm.DB, now time.Time) ([]StatusStat, int64, error)
}
