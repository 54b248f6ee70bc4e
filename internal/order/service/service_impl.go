package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/internal/config"
	"github.com/pedidofacil/pedidofacil/internal/order/domain"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
	"github.com/pedidofacil/pedidofacil/pkg/validate"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minClientLength  = 2
	maxClientLength  = 100
	minProductLength = 2
	maxProductLength = 200
	maxNotesLength   = 500
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Settings config.Settings
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	settings config.Settings
	repo     domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("order.service"),
		genID:    p.GenID,
		settings: p.Settings,
		repo:     p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest, requester userdomain.Requester) (*domain.Order, error) {
	v := &validate.Errors{}

	client := strings.TrimSpace(req.Client)
	if len(client) < minClientLength || len(client) > maxClientLength {
		v.Add("client", "invalid_client", "client name must be between 2 and 100 characters")
	}
	product := strings.TrimSpace(req.Product)
	if len(product) < minProductLength || len(product) > maxProductLength {
		v.Add("product", "invalid_product", "product name must be between 2 and 200 characters")
	}
	if req.Quantity < 1 {
		v.Add("quantity", "invalid_quantity", "quantity must be an integer greater than zero")
	}
	if req.UnitPrice < 0 {
		v.Add("unit_price", "invalid_unit_price", "unit price must not be negative")
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		v.Add("due_date", "invalid_due_date", "due date must be a valid date")
	} else if !dueDate.After(time.Now().UTC()) {
		v.Add("due_date", "invalid_due_date", "due date must be in the future")
	}
	if len(req.Notes) > maxNotesLength {
		v.Add("notes", "invalid_notes", "notes must not exceed 500 characters")
	}

	if v.HasErrors() {
		return nil, v
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        s.genID.Generate(),
		Client:    client,
		Product:   product,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		DueDate:   dueDate,
		Status:    domain.OrderStatusPending,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedBy: requester.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.ComputeTotal()

	if err := s.repo.Insert(ctx, s.db, order); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("created_by", requester.ID.String()),
	)
	return order, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, s.db, orderID)
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) (domain.ListOrderResponse, error) {
	if req.Status != "" && !req.Status.Valid() {
		return domain.ListOrderResponse{}, validate.New("status", "invalid_status", "unknown order status")
	}

	page := req.Pagination.Normalize(s.settings.DefaultPageSize, s.settings.MaxPageSize)
	filter := domain.ListOrderFilter{
		Status:    req.Status,
		Search:    strings.TrimSpace(req.Search),
		DueAfter:  req.DueAfter,
		DueBefore: req.DueBefore,
	}

	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListOrderResponse{}, err
	}

	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		orders = append(orders, *item)
	}
	return domain.ListOrderResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Orders:   orders,
	}, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateOrderRequest, requester userdomain.Requester) (*domain.Order, error) {
	orderID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if !canModify(order, requester) {
		return nil, domain.ErrNotOwner
	}

	v := &validate.Errors{}
	if req.Client != nil {
		client := strings.TrimSpace(*req.Client)
		if len(client) < minClientLength || len(client) > maxClientLength {
			v.Add("client", "invalid_client", "client name must be between 2 and 100 characters")
		} else {
			order.Client = client
		}
	}
	if req.Product != nil {
		product := strings.TrimSpace(*req.Product)
		if len(product) < minProductLength || len(product) > maxProductLength {
			v.Add("product", "invalid_product", "product name must be between 2 and 200 characters")
		} else {
			order.Product = product
		}
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			v.Add("quantity", "invalid_quantity", "quantity must be an integer greater than zero")
		} else {
			order.Quantity = *req.Quantity
		}
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			v.Add("unit_price", "invalid_unit_price", "unit price must not be negative")
		} else {
			order.UnitPrice = *req.UnitPrice
		}
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			v.Add("due_date", "invalid_due_date", "due date must be a valid date")
		} else if !dueDate.After(time.Now().UTC()) {
			v.Add("due_date", "invalid_due_date", "due date must be in the future")
		} else {
			order.DueDate = dueDate
		}
	}
	if req.Status != nil {
		// Any enumerated status is accepted; order transitions are not gated.
		if !req.Status.Valid() {
			v.Add("status", "invalid_status", "unknown order status")
		} else {
			order.Status = *req.Status
		}
	}
	if req.Notes != nil {
		if len(*req.Notes) > maxNotesLength {
			v.Add("notes", "invalid_notes", "notes must not exceed 500 characters")
		} else {
			order.Notes = strings.TrimSpace(*req.Notes)
		}
	}
	if v.HasErrors() {
		return nil, v
	}

	order.ComputeTotal()
	modifier := requester.ID
	order.UpdatedBy = &modifier
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) Delete(ctx context.Context, id string, requester userdomain.Requester) error {
	orderID, err := s.parseID(id)
	if err != nil {
		return err
	}
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return err
	}
	if !canModify(order, requester) {
		return domain.ErrNotOwner
	}
	return s.repo.Delete(ctx, s.db, orderID)
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	byStatus, err := s.repo.Stats(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{ByStatus: byStatus}
	for _, row := range byStatus {
		stats.TotalOrders += row.Count
		stats.TotalValue += row.TotalValue
	}
	return stats, nil
}

func canModify(order *domain.Order, requester userdomain.Requester) bool {
	return requester.IsAdmin() || order.CreatedBy == requester.ID
}

func (s *Service) parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func parseDueDate(raw string) (time.Time, error) {
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
