package domain

import (
	"context"
	"time"

	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
)

type ItemInput struct {
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type TaxesInput struct {
	ICMS   float64 `json:"icms"`
	PIS    float64 `json:"pis"`
	COFINS float64 `json:"cofins"`
}

type AddressInput struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
}

type ClientInput struct {
	Name    string       `json:"name"`
	CNPJ    string       `json:"cnpj"`
	CPF     string       `json:"cpf"`
	Address AddressInput `json:"address"`
}

type CreateInvoiceRequest struct {
	Number  string      `json:"number"`
	Series  string      `json:"series"`
	Type    InvoiceType `json:"type"`
	DueDate string      `json:"due_date"`
	Client  ClientInput `json:"client"`
	Items   []ItemInput `json:"items"`
	Taxes   TaxesInput  `json:"taxes"`
	Notes   string      `json:"notes"`
	OrderID string      `json:"order_id"`
}

// UpdateInvoiceRequest patches a draft (or canceled) invoice. Nil fields are
// left untouched; a non-nil Items slice replaces all line items.
type UpdateInvoiceRequest struct {
	Number  *string      `json:"number"`
	Series  *string      `json:"series"`
	Type    *InvoiceType `json:"type"`
	DueDate *string      `json:"due_date"`
	Client  *ClientInput `json:"client"`
	Items   []ItemInput  `json:"items"`
	Taxes   *TaxesInput  `json:"taxes"`
	Notes   *string      `json:"notes"`
}

type ListInvoiceRequest struct {
	Status      InvoiceStatus `form:"status"`
	Type        InvoiceType   `form:"type"`
	Search      string        `form:"search"`
	IssuedAfter *time.Time    `form:"issued_after" time_format:"2006-01-02"`
	IssuedUntil *time.Time    `form:"issued_until" time_format:"2006-01-02"`
	pagination.Pagination
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest, requester userdomain.Requester) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (*Invoice, error)

	// Issue moves a draft invoice to issued, stamps the issue date and
	// writes the invoice summary back onto its order.
	Issue(ctx context.Context, id string) (*Invoice, error)
	Cancel(ctx context.Context, id string) (*Invoice, error)
	MarkPaid(ctx context.Context, id string) (*Invoice, error)

	Stats(ctx context.Context) (Stats, error)
}
