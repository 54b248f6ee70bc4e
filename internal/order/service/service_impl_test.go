package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/internal/config"
	"github.com/pedidofacil/pedidofacil/internal/order/domain"
	"github.com/pedidofacil/pedidofacil/internal/order/repository"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	pkgdb "github.com/pedidofacil/pedidofacil/pkg/db"
	"github.com/pedidofacil/pedidofacil/pkg/validate"
	"go.uber.org/zap"
)

func setupOrderService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := pkgdb.NewTest(t.Name())
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Order{}); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Settings: config.Settings{DefaultPageSize: 10, MaxPageSize: 100},
		Repo:     repository.Provide(),
	})
	return svc, node
}

func operatorRequester(node *snowflake.Node) userdomain.Requester {
	return userdomain.Requester{ID: node.Generate(), Role: userdomain.RoleOperator, Active: true}
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestCreateComputesTotal(t *testing.T) {
	svc, node := setupOrderService(t)

	order, err := svc.Create(context.Background(), domain.CreateOrderRequest{
		Client:    "Empresa ABC Ltda",
		Product:   "Notebook Dell Inspiron 15",
		Quantity:  10,
		UnitPrice: 5.0,
		DueDate:   futureDate(7),
	}, operatorRequester(node))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if order.Total != 50.0 {
		t.Fatalf("expected total 50.0, got %v", order.Total)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending status, got %q", order.Status)
	}
}

func TestCreateCollectsAllViolations(t *testing.T) {
	svc, node := setupOrderService(t)

	_, err := svc.Create(context.Background(), domain.CreateOrderRequest{
		Client:    "x",
		Product:   "y",
		Quantity:  0,
		UnitPrice: -1,
		DueDate:   "not-a-date",
		Notes:     strings.Repeat("n", 501),
	}, operatorRequester(node))

	var vErr *validate.Errors
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if len(vErr.Fields) != 6 {
		t.Fatalf("expected 6 field errors, got %d: %v", len(vErr.Fields), vErr.Fields)
	}
}

func TestUpdateRecomputesTotal(t *testing.T) {
	svc, node := setupOrderService(t)
	ctx := context.Background()
	requester := operatorRequester(node)

	order, err := svc.Create(ctx, domain.CreateOrderRequest{
		Client:    "Empresa ABC Ltda",
		Product:   "Notebook Dell Inspiron 15",
		Quantity:  10,
		UnitPrice: 5.0,
		DueDate:   futureDate(7),
	}, requester)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	quantity := 3
	price := 100.0
	updated, err := svc.Update(ctx, order.ID.String(), domain.UpdateOrderRequest{
		Quantity:  &quantity,
		UnitPrice: &price,
	}, requester)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Total != 300.0 {
		t.Fatalf("expected total 300.0, got %v", updated.Total)
	}
}

func TestUpdateOwnership(t *testing.T) {
	svc, node := setupOrderService(t)
	ctx := context.Background()
	owner := operatorRequester(node)

	order, err := svc.Create(ctx, domain.CreateOrderRequest{
		Client:    "Empresa ABC Ltda",
		Product:   "Notebook Dell Inspiron 15",
		Quantity:  1,
		UnitPrice: 10,
		DueDate:   futureDate(7),
	}, owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status := domain.OrderStatusReady
	stranger := operatorRequester(node)
	if _, err := svc.Update(ctx, order.ID.String(), domain.UpdateOrderRequest{Status: &status}, stranger); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected not owner for another operator, got %v", err)
	}
	if err := svc.Delete(ctx, order.ID.String(), stranger); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected not owner on delete, got %v", err)
	}

	admin := userdomain.Requester{ID: node.Generate(), Role: userdomain.RoleAdmin, Active: true}
	updated, err := svc.Update(ctx, order.ID.String(), domain.UpdateOrderRequest{Status: &status}, admin)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Status != domain.OrderStatusReady {
		t.Fatalf("expected ready status, got %q", updated.Status)
	}
}

func TestStatsAggregation(t *testing.T) {
	svc, node := setupOrderService(t)
	ctx := context.Background()
	requester := operatorRequester(node)

	if _, err := svc.Create(ctx, domain.CreateOrderRequest{
		Client:    "Empresa ABC Ltda",
		Product:   "Notebook Dell Inspiron 15",
		Quantity:  1,
		UnitPrice: 100.0,
		DueDate:   futureDate(7),
	}, requester); err != nil {
		t.Fatalf("create first: %v", err)
	}

	second, err := svc.Create(ctx, domain.CreateOrderRequest{
		Client:    "Comercio XYZ",
		Product:   "Mouse Wireless Logitech",
		Quantity:  1,
		UnitPrice: 200.0,
		DueDate:   futureDate(7),
	}, requester)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	status := domain.OrderStatusDelivered
	if _, err := svc.Update(ctx, second.ID.String(), domain.UpdateOrderRequest{Status: &status}, requester); err != nil {
		t.Fatalf("deliver second: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalOrders != 2 {
		t.Fatalf("expected 2 orders, got %d", stats.TotalOrders)
	}
	if stats.TotalValue != 300.0 {
		t.Fatalf("expected total value 300.0, got %v", stats.TotalValue)
	}

	byStatus := make(map[domain.OrderStatus]domain.StatusStat, len(stats.ByStatus))
	for _, row := range stats.ByStatus {
		byStatus[row.Status] = row
	}
	if row := byStatus[domain.OrderStatusPending]; row.Count != 1 || row.TotalValue != 100.0 {
		t.Fatalf("unexpected pending rollup: %+v", row)
	}
	if row := byStatus[domain.OrderStatusDelivered]; row.Count != 1 || row.TotalValue != 200.0 {
		t.Fatalf("unexpected delivered rollup: %+v", row)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	svc, node := setupOrderService(t)
	ctx := context.Background()
	requester := operatorRequester(node)

	for i, client := range []string{"Empresa ABC Ltda", "Comercio XYZ", "Distribuidora 123"} {
		if _, err := svc.Create(ctx, domain.CreateOrderRequest{
			Client:    client,
			Product:   fmt.Sprintf("Produto %d", i),
			Quantity:  1,
			UnitPrice: 10,
			DueDate:   futureDate(7),
		}, requester); err != nil {
			t.Fatalf("create %s: %v", client, err)
		}
	}

	resp, err := svc.List(ctx, domain.ListOrderRequest{Status: domain.OrderStatusPending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Orders) != 3 || resp.TotalItems != 3 {
		t.Fatalf("expected 3 pending orders, got %d (total %d)", len(resp.Orders), resp.TotalItems)
	}

	resp, err = svc.List(ctx, domain.ListOrderRequest{Search: "XYZ"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(resp.Orders) != 1 {
		t.Fatalf("expected 1 match for XYZ, got %d", len(resp.Orders))
	}
}
