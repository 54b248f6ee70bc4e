// Package domain contains persistence models for customer orders.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OrderStatus represents order lifecycle states. Transitions between
// statuses are deliberately unrestricted: any valid status can be set
// through an update.
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusCanceled     OrderStatus = "canceled"
)

// Valid reports whether s is one of the enumerated statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProduction, OrderStatusReady,
		OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// Order represents a customer order.
type Order struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Client    string       `gorm:"type:text;not null;index" json:"client"`
	Product   string       `gorm:"type:text;not null" json:"product"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	UnitPrice float64      `gorm:"column:unit_price;not null" json:"unit_price"`
	Total     float64      `gorm:"not null" json:"total"`
	DueDate   time.Time    `gorm:"column:due_date;not null;index" json:"due_date"`
	Status    OrderStatus  `gorm:"type:text;not null;default:'pending';index" json:"status"`
	Notes     string       `gorm:"type:text" json:"notes"`

	// Summary of the invoice issued against this order, filled in when
	// the invoice is issued.
	InvoiceNumber   string     `gorm:"column:invoice_number;type:text" json:"invoice_number,omitempty"`
	InvoiceIssuedAt *time.Time `gorm:"column:invoice_issued_at" json:"invoice_issued_at,omitempty"`
	InvoiceFile     string     `gorm:"column:invoice_file;type:text" json:"invoice_file,omitempty"`

	CreatedBy snowflake.ID  `gorm:"column:created_by;not null;index" json:"created_by"`
	UpdatedBy *snowflake.ID `gorm:"column:updated_by" json:"updated_by,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// ComputeTotal recomputes the derived total from quantity and unit price.
// The total is never settable independently; every create and update calls
// this before persisting.
func (o *Order) ComputeTotal() {
	o.Total = float64(o.Quantity) * o.UnitPrice
}

// StatusStat is one row of the per-status rollup.
type StatusStat struct {
	Status     OrderStatus `json:"status"`
	Count      int64       `json:"count"`
	TotalValue float64     `json:"total_value"`
}

// Stats is the aggregate view over all orders.
type Stats struct {
	ByStatus    []StatusStat `json:"status_stats"`
	TotalOrders int64        `json:"total_orders"`
	TotalValue  float64      `json:"total_value"`
}
