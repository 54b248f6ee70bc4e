// Package domain contains persistence models for invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft    InvoiceStatus = "draft"
	InvoiceStatusIssued   InvoiceStatus = "issued"
	InvoiceStatusCanceled InvoiceStatus = "canceled"
	InvoiceStatusPaid     InvoiceStatus = "paid"
)

// Valid reports whether s is one of the enumerated statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusCanceled, InvoiceStatusPaid:
		return true
	}
	return false
}

// InvoiceType distinguishes inbound from outbound documents.
type InvoiceType string

const (
	InvoiceTypeInbound  InvoiceType = "inbound"
	InvoiceTypeOutbound InvoiceType = "outbound"
)

// Valid reports whether t is one of the enumerated types.
func (t InvoiceType) Valid() bool {
	return t == InvoiceTypeInbound || t == InvoiceTypeOutbound
}

// Address is the client address snapshot embedded in an invoice.
type Address struct {
	Street     string `gorm:"type:text" json:"street,omitempty"`
	Number     string `gorm:"type:text" json:"number,omitempty"`
	Complement string `gorm:"type:text" json:"complement,omitempty"`
	District   string `gorm:"type:text" json:"district,omitempty"`
	City       string `gorm:"type:text" json:"city,omitempty"`
	State      string `gorm:"type:text" json:"state,omitempty"`
	ZipCode    string `gorm:"column:zip_code;type:text" json:"zip_code,omitempty"`
}

// Client is the point-in-time client snapshot embedded in an invoice; it is
// copied at creation so later client edits never rewrite issued documents.
type Client struct {
	Name    string  `gorm:"type:text;not null" json:"name"`
	CNPJ    string  `gorm:"column:cnpj;type:text" json:"cnpj,omitempty"`
	CPF     string  `gorm:"column:cpf;type:text" json:"cpf,omitempty"`
	Address Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
}

// Invoice represents a fiscal document issued against exactly one order.
type Invoice struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	Number    string        `gorm:"type:text;not null;uniqueIndex" json:"number"`
	Series    string        `gorm:"type:text;not null" json:"series"`
	Type      InvoiceType   `gorm:"type:text;not null" json:"type"`
	IssueDate time.Time     `gorm:"column:issue_date;not null;index" json:"issue_date"`
	DueDate   time.Time     `gorm:"column:due_date;not null;index" json:"due_date"`
	Client    Client        `gorm:"embedded;embeddedPrefix:client_" json:"client"`
	Items     []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	Subtotal  float64       `gorm:"not null" json:"subtotal"`
	ICMS      float64       `gorm:"column:tax_icms;not null;default:0" json:"icms"`
	PIS       float64       `gorm:"column:tax_pis;not null;default:0" json:"pis"`
	COFINS    float64       `gorm:"column:tax_cofins;not null;default:0" json:"cofins"`
	Total     float64       `gorm:"not null" json:"total"`
	Status    InvoiceStatus `gorm:"type:text;not null;default:'draft';index" json:"status"`
	Notes     string        `gorm:"type:text" json:"notes"`
	FilePath  string        `gorm:"column:file_path;type:text" json:"file_path,omitempty"`
	OrderID   snowflake.ID  `gorm:"column:order_id;not null;uniqueIndex" json:"order_id"`
	IssuedBy  snowflake.ID  `gorm:"column:issued_by;not null;index" json:"issued_by"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice.
type InvoiceItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"column:invoice_id;not null;index" json:"-"`
	Product   string       `gorm:"type:text;not null" json:"product"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	UnitPrice float64      `gorm:"column:unit_price;not null" json:"unit_price"`
	Total     float64      `gorm:"not null" json:"total"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// ComputeTotals recomputes every derived amount from the line items and tax
// fields. Client-supplied totals are always discarded; every create and
// update calls this before persisting.
func (inv *Invoice) ComputeTotals() {
	inv.Subtotal = 0
	for i := range inv.Items {
		item := &inv.Items[i]
		item.Total = float64(item.Quantity) * item.UnitPrice
		inv.Subtotal += item.Total
	}
	inv.Total = inv.Subtotal + inv.ICMS + inv.PIS + inv.COFINS
}

// Editable reports whether the invoice can still be modified. Issued and
// paid documents are frozen; draft and canceled remain editable.
func (inv *Invoice) Editable() bool {
	return inv.Status != InvoiceStatusIssued && inv.Status != InvoiceStatusPaid
}

// Overdue reports whether the invoice is past due and not settled. Canceled
// documents are never overdue.
func (inv *Invoice) Overdue(now time.Time) bool {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCanceled {
		return false
	}
	return inv.DueDate.Before(now)
}

// StatusStat is one row of the per-status rollup.
type StatusStat struct {
	Status     InvoiceStatus `json:"status"`
	Count      int64         `json:"count"`
	TotalValue float64       `json:"total_value"`
}

// Stats is the aggregate view over all invoices.
type Stats struct {
	ByStatus      []StatusStat `json:"status_stats"`
	TotalInvoices int64        `json:"total_invoices"`
	TotalValue    float64      `json:"total_value"`
	Overdue       int64        `json:"overdue"`
}
