package authorization

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	pkgdb "github.com/pedidofacil/pedidofacil/pkg/db"
	"go.uber.org/zap"
)

func setupAuthorization(t *testing.T) (Service, *snowflake.Node) {
	t.Helper()

	db, err := pkgdb.NewTest(t.Name())
	if err != nil {
		t.Fatal(err)
	}

	enforcer, err := NewEnforcer(db)
	if err != nil {
		t.Fatalf("new enforcer: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
	return svc, node
}

func TestRolePolicy(t *testing.T) {
	svc, node := setupAuthorization(t)
	ctx := context.Background()

	operator := userdomain.Requester{ID: node.Generate(), Role: userdomain.RoleOperator, Active: true}
	manager := userdomain.Requester{ID: node.Generate(), Role: userdomain.RoleManager, Active: true}
	admin := userdomain.Requester{ID: node.Generate(), Role: userdomain.RoleAdmin, Active: true}

	cases := []struct {
		name      string
		requester userdomain.Requester
		object    string
		action    string
		allowed   bool
	}{
		{"operator creates orders", operator, ObjectOrder, ActionOrderCreate, true},
		{"operator views invoices", operator, ObjectInvoice, ActionInvoiceView, true},
		{"operator cannot issue invoices", operator, ObjectInvoice, ActionInvoiceIssue, false},
		{"operator cannot view stats", operator, ObjectStats, ActionStatsView, false},
		{"operator cannot manage users", operator, ObjectUser, ActionUserView, false},
		{"manager issues invoices", manager, ObjectInvoice, ActionInvoiceIssue, true},
		{"manager views stats", manager, ObjectStats, ActionStatsView, true},
		{"manager inherits order access", manager, ObjectOrder, ActionOrderUpdate, true},
		{"manager cannot manage users", manager, ObjectUser, ActionUserDelete, false},
		{"admin manages users", admin, ObjectUser, ActionUserDelete, true},
		{"admin inherits invoice access", admin, ObjectInvoice, ActionInvoicePay, true},
		{"admin inherits order access", admin, ObjectOrder, ActionOrderDelete, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(ctx, tc.requester, tc.object, tc.action)
			if tc.allowed && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tc.allowed && !errors.Is(err, ErrForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		})
	}
}

func TestAuthorizeRejectsInvalidInput(t *testing.T) {
	svc, node := setupAuthorization(t)
	ctx := context.Background()

	if err := svc.Authorize(ctx, userdomain.Requester{}, ObjectOrder, ActionOrderView); !errors.Is(err, ErrInvalidActor) {
		t.Fatalf("expected invalid actor, got %v", err)
	}

	requester := userdomain.Requester{ID: node.Generate(), Role: userdomain.RoleAdmin, Active: true}
	if err := svc.Authorize(ctx, requester, "", ActionOrderView); !errors.Is(err, ErrInvalidObject) {
		t.Fatalf("expected invalid object, got %v", err)
	}
	if err := svc.Authorize(ctx, requester, ObjectOrder, " "); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected invalid action, got %v", err)
	}
}
