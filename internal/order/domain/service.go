package domain

import (
	"context"
	"time"

	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
)

type CreateOrderRequest struct {
	Client    string  `json:"client"`
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	DueDate   string  `json:"due_date"`
	Notes     string  `json:"notes"`
}

// UpdateOrderRequest patches an order. Nil fields are left untouched.
type UpdateOrderRequest struct {
	Client    *string      `json:"client"`
	Product   *string      `json:"product"`
	Quantity  *int         `json:"quantity"`
	UnitPrice *float64     `json:"unit_price"`
	DueDate   *string      `json:"due_date"`
	Status    *OrderStatus `json:"status"`
	Notes     *string      `json:"notes"`
}

type ListOrderRequest struct {
	Status    OrderStatus `form:"status"`
	Search    string      `form:"search"`
	DueAfter  *time.Time  `form:"due_after" time_format:"2006-01-02"`
	DueBefore *time.Time  `form:"due_before" time_format:"2006-01-02"`
	pagination.Pagination
}

type ListOrderResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest, requester userdomain.Requester) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, req ListOrderRequest) (ListOrderResponse, error)
	Update(ctx context.Context, id string, req UpdateOrderRequest, requester userdomain.Requester) (*Order, error)
	Delete(ctx context.Context, id string, requester userdomain.Requester) error
	Stats(ctx context.Context) (Stats, error)
}
