package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/internal/config"
	"github.com/pedidofacil/pedidofacil/internal/invoice/domain"
	orderdomain "github.com/pedidofacil/pedidofacil/internal/order/domain"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"github.com/pedidofacil/pedidofacil/pkg/db"
	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
	"github.com/pedidofacil/pedidofacil/pkg/validate"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minNumberLength  = 1
	maxNumberLength  = 50
	minSeriesLength  = 1
	maxSeriesLength  = 20
	minClientLength  = 2
	maxClientLength  = 100
	minProductLength = 2
	maxProductLength = 200
	maxNotesLength   = 500
	minCNPJLength    = 14
	maxCNPJLength    = 18
	minCPFLength     = 11
	maxCPFLength     = 14
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Settings config.Settings
	Repo     domain.Repository
	Orders   orderdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	settings config.Settings
	repo     domain.Repository
	orders   orderdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		settings: p.Settings,
		repo:     p.Repo,
		orders:   p.Orders,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest, requester userdomain.Requester) (*domain.Invoice, error) {
	v := &validate.Errors{}

	number := strings.TrimSpace(req.Number)
	if len(number) < minNumberLength || len(number) > maxNumberLength {
		v.Add("number", "invalid_number", "invoice number must be between 1 and 50 characters")
	}
	series := strings.TrimSpace(req.Series)
	if len(series) < minSeriesLength || len(series) > maxSeriesLength {
		v.Add("series", "invalid_series", "series must be between 1 and 20 characters")
	}
	if !req.Type.Valid() {
		v.Add("type", "invalid_type", "type must be inbound or outbound")
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		v.Add("due_date", "invalid_due_date", "due date must be a valid date")
	}
	client := validateClient(v, req.Client)
	items := validateItems(v, req.Items)
	validateTaxes(v, req.Taxes)
	if len(req.Notes) > maxNotesLength {
		v.Add("notes", "invalid_notes", "notes must not exceed 500 characters")
	}
	orderID, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
	if err != nil {
		v.Add("order_id", "invalid_order_id", "order id must be valid")
	}

	if v.HasErrors() {
		return nil, v
	}

	if _, err := s.orders.FindByID(ctx, s.db, orderID); err != nil {
		return nil, err
	}

	// Friendly-path checks; the unique indexes remain the authority when
	// two creations race past them.
	if _, err := s.repo.FindByOrderID(ctx, s.db, orderID); err == nil {
		return nil, domain.ErrOrderHasInvoice
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		ID:        s.genID.Generate(),
		Number:    number,
		Series:    series,
		Type:      req.Type,
		IssueDate: now,
		DueDate:   dueDate,
		Client:    client,
		Items:     items,
		ICMS:      req.Taxes.ICMS,
		PIS:       req.Taxes.PIS,
		COFINS:    req.Taxes.COFINS,
		Status:    domain.InvoiceStatusDraft,
		Notes:     strings.TrimSpace(req.Notes),
		OrderID:   orderID,
		IssuedBy:  requester.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range invoice.Items {
		invoice.Items[i].ID = s.genID.Generate()
		invoice.Items[i].InvoiceID = invoice.ID
	}
	invoice.ComputeTotals()

	if err := s.repo.Insert(ctx, s.db, invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, s.classifyDuplicate(ctx, orderID)
		}
		return nil, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
		zap.String("order_id", orderID.String()),
	)
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	invoiceID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, s.db, invoiceID)
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	v := &validate.Errors{}
	if req.Status != "" && !req.Status.Valid() {
		v.Add("status", "invalid_status", "unknown invoice status")
	}
	if req.Type != "" && !req.Type.Valid() {
		v.Add("type", "invalid_type", "type must be inbound or outbound")
	}
	if v.HasErrors() {
		return domain.ListInvoiceResponse{}, v
	}

	page := req.Pagination.Normalize(s.settings.DefaultPageSize, s.settings.MaxPageSize)
	filter := domain.ListInvoiceFilter{
		Status:      req.Status,
		Type:        req.Type,
		Search:      strings.TrimSpace(req.Search),
		IssuedAfter: req.IssuedAfter,
		IssuedUntil: req.IssuedUntil,
	}

	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, *item)
	}
	return domain.ListInvoiceResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Invoices: invoices,
	}, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateInvoiceRequest) (*domain.Invoice, error) {
	invoiceID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.Editable() {
		return nil, domain.ErrNotEditable
	}

	v := &validate.Errors{}
	if req.Number != nil {
		number := strings.TrimSpace(*req.Number)
		if len(number) < minNumberLength || len(number) > maxNumberLength {
			v.Add("number", "invalid_number", "invoice number must be between 1 and 50 characters")
		} else {
			invoice.Number = number
		}
	}
	if req.Series != nil {
		series := strings.TrimSpace(*req.Series)
		if len(series) < minSeriesLength || len(series) > maxSeriesLength {
			v.Add("series", "invalid_series", "series must be between 1 and 20 characters")
		} else {
			invoice.Series = series
		}
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			v.Add("type", "invalid_type", "type must be inbound or outbound")
		} else {
			invoice.Type = *req.Type
		}
	}
	if req.DueDate != nil {
		dueDate, err := parseDate(*req.DueDate)
		if err != nil {
			v.Add("due_date", "invalid_due_date", "due date must be a valid date")
		} else {
			invoice.DueDate = dueDate
		}
	}
	if req.Client != nil {
		invoice.Client = validateClient(v, *req.Client)
	}
	if req.Items != nil {
		items := validateItems(v, req.Items)
		for i := range items {
			items[i].ID = s.genID.Generate()
			items[i].InvoiceID = invoice.ID
		}
		invoice.Items = items
	}
	if req.Taxes != nil {
		validateTaxes(v, *req.Taxes)
		invoice.ICMS = req.Taxes.ICMS
		invoice.PIS = req.Taxes.PIS
		invoice.COFINS = req.Taxes.COFINS
	}
	if req.Notes != nil {
		if len(*req.Notes) > maxNotesLength {
			v.Add("notes", "invalid_notes", "notes must not exceed 500 characters")
		} else {
			invoice.Notes = strings.TrimSpace(*req.Notes)
		}
	}
	if v.HasErrors() {
		return nil, v
	}

	invoice.ComputeTotals()
	invoice.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNumberTaken
		}
		return nil, err
	}
	return invoice, nil
}

func (s *Service) Issue(ctx context.Context, id string) (*domain.Invoice, error) {
	invoiceID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return nil, domain.ErrNotDraft
	}

	now := time.Now().UTC()
	invoice.Status = domain.InvoiceStatusIssued
	invoice.IssueDate = now
	invoice.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return nil, err
	}

	if err := s.stampOrder(ctx, invoice); err != nil {
		s.log.Warn("order invoice summary not updated",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}

	s.log.Info("invoice issued", zap.String("invoice_id", invoice.ID.String()))
	return invoice, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*domain.Invoice, error) {
	invoiceID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case domain.InvoiceStatusCanceled:
		return nil, domain.ErrAlreadyCanceled
	case domain.InvoiceStatusPaid:
		return nil, domain.ErrCancelPaid
	}

	invoice.Status = domain.InvoiceStatusCanceled
	invoice.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return nil, err
	}

	s.log.Info("invoice canceled", zap.String("invoice_id", invoice.ID.String()))
	return invoice, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (*domain.Invoice, error) {
	invoiceID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case domain.InvoiceStatusPaid:
		return nil, domain.ErrAlreadyPaid
	case domain.InvoiceStatusCanceled:
		return nil, domain.ErrPayCanceled
	}

	invoice.Status = domain.InvoiceStatusPaid
	invoice.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return nil, err
	}

	s.log.Info("invoice paid", zap.String("invoice_id", invoice.ID.String()))
	return invoice, nil
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	byStatus, overdue, err := s.repo.Stats(ctx, s.db, time.Now().UTC())
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{ByStatus: byStatus, Overdue: overdue}
	for _, row := range byStatus {
		stats.TotalInvoices += row.Count
		stats.TotalValue += row.TotalValue
	}
	return stats, nil
}

// stampOrder writes the invoice summary back onto the order.
func (s *Service) stampOrder(ctx context.Context, invoice *domain.Invoice) error {
	order, err := s.orders.FindByID(ctx, s.db, invoice.OrderID)
	if err != nil {
		return err
	}
	order.InvoiceNumber = invoice.Number
	issuedAt := invoice.IssueDate
	order.InvoiceIssuedAt = &issuedAt
	order.InvoiceFile = invoice.FilePath
	order.UpdatedAt = time.Now().UTC()
	return s.orders.Update(ctx, s.db, order)
}

// classifyDuplicate decides which uniqueness constraint fired after a
// duplicate-key insert failure.
func (s *Service) classifyDuplicate(ctx context.Context, orderID snowflake.ID) error {
	if _, err := s.repo.FindByOrderID(ctx, s.db, orderID); err == nil {
		return domain.ErrOrderHasInvoice
	}
	return domain.ErrNumberTaken
}

func (s *Service) parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func validateClient(v *validate.Errors, input domain.ClientInput) domain.Client {
	name := strings.TrimSpace(input.Name)
	if len(name) < minClientLength || len(name) > maxClientLength {
		v.Add("client.name", "invalid_client_name", "client name must be between 2 and 100 characters")
	}
	cnpj := strings.TrimSpace(input.CNPJ)
	if cnpj != "" && (len(cnpj) < minCNPJLength || len(cnpj) > maxCNPJLength) {
		v.Add("client.cnpj", "invalid_cnpj", "CNPJ must have between 14 and 18 characters")
	}
	cpf := strings.TrimSpace(input.CPF)
	if cpf != "" && (len(cpf) < minCPFLength || len(cpf) > maxCPFLength) {
		v.Add("client.cpf", "invalid_cpf", "CPF must have between 11 and 14 characters")
	}
	return domain.Client{
		Name: name,
		CNPJ: cnpj,
		CPF:  cpf,
		Address: domain.Address{
			Street:     strings.TrimSpace(input.Address.Street),
			Number:     strings.TrimSpace(input.Address.Number),
			Complement: strings.TrimSpace(input.Address.Complement),
			District:   strings.TrimSpace(input.Address.District),
			City:       strings.TrimSpace(input.Address.City),
			State:      strings.TrimSpace(input.Address.State),
			ZipCode:    strings.TrimSpace(input.Address.ZipCode),
		},
	}
}

func validateItems(v *validate.Errors, inputs []domain.ItemInput) []domain.InvoiceItem {
	if len(inputs) == 0 {
		v.Add("items", "invalid_items", "at least one line item is required")
		return nil
	}
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for _, input := range inputs {
		product := strings.TrimSpace(input.Product)
		if len(product) < minProductLength || len(product) > maxProductLength {
			v.Add("items.product", "invalid_product", "product name must be between 2 and 200 characters")
		}
		if input.Quantity < 1 {
			v.Add("items.quantity", "invalid_quantity", "quantity must be an integer greater than zero")
		}
		if input.UnitPrice < 0 {
			v.Add("items.unit_price", "invalid_unit_price", "unit price must not be negative")
		}
		items = append(items, domain.InvoiceItem{
			Product:   product,
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
		})
	}
	return items
}

func validateTaxes(v *validate.Errors, taxes domain.TaxesInput) {
	if taxes.ICMS < 0 {
		v.Add("taxes.icms", "invalid_icms", "ICMS must not be negative")
	}
	if taxes.PIS < 0 {
		v.Add("taxes.pis", "invalid_pis", "PIS must not be negative")
	}
	if taxes.COFINS < 0 {
		v.Add("taxes.cofins", "invalid_cofins", "COFINS must not be negative")
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
