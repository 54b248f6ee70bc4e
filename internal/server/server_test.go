package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/internal/authorization"
	"github.com/pedidofacil/pedidofacil/internal/config"
	invoicedomain "github.com/pedidofacil/pedidofacil/internal/invoice/domain"
	invoicerepository "github.com/pedidofacil/pedidofacil/internal/invoice/repository"
	invoiceservice "github.com/pedidofacil/pedidofacil/internal/invoice/service"
	"github.com/pedidofacil/pedidofacil/internal/metrics"
	orderdomain "github.com/pedidofacil/pedidofacil/internal/order/domain"
	orderrepository "github.com/pedidofacil/pedidofacil/internal/order/repository"
	orderservice "github.com/pedidofacil/pedidofacil/internal/order/service"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	userrepository "github.com/pedidofacil/pedidofacil/internal/user/repository"
	userservice "github.com/pedidofacil/pedidofacil/internal/user/service"
	pkgdb "github.com/pedidofacil/pedidofacil/pkg/db"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func setupServer(t *testing.T) *Server {
	t.Helper()

	db, err := pkgdb.NewTest(t.Name())
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(
		&userdomain.User{},
		&userdomain.Session{},
		&orderdomain.Order{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{AppName: "pedidofacil", Environment: "test", HTTPAddr: ":0"}
	settings := config.Settings{
		DefaultPageSize: 10,
		MaxPageSize:     100,
		SessionTTLDays:  7,
		BcryptCost:      bcrypt.MinCost,
	}
	log := zap.NewNop()

	userSvc := userservice.New(userservice.Params{
		DB: db, Log: log, GenID: node, Settings: settings,
		Repo:     userrepository.Provide(),
		Sessions: userrepository.ProvideSessions(),
	})
	orderRepo := orderrepository.Provide()
	orderSvc := orderservice.New(orderservice.Params{
		DB: db, Log: log, GenID: node, Settings: settings,
		Repo: orderRepo,
	})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Settings: settings,
		Repo:   invoicerepository.Provide(),
		Orders: orderRepo,
	})

	enforcer, err := authorization.NewEnforcer(db)
	if err != nil {
		t.Fatalf("new enforcer: %v", err)
	}
	authzSvc := authorization.NewService(authorization.Params{DB: db, Log: log, Enforcer: enforcer})

	httpMetrics := metrics.New(prometheus.NewRegistry(), metrics.Config{ServiceName: "pedidofacil", Environment: "test"})
	engine := NewEngine(cfg, log, httpMetrics)

	return NewServer(ServerParams{
		Gin:        engine,
		Cfg:        cfg,
		DB:         db,
		GenID:      node,
		UserSvc:    userSvc,
		OrderSvc:   orderSvc,
		InvoiceSvc: invoiceSvc,
		AuthzSvc:   authzSvc,
	})
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func registerAccount(t *testing.T, s *Server, email string, role userdomain.Role) string {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/api/users/register", "", map[string]any{
		"name":     "Test Account",
		"email":    email,
		"password": "secret1",
		"role":     role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Token == "" {
		t.Fatal("expected a session token")
	}
	return resp.Data.Token
}

func TestHealthEndpoint(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOrdersRequireAuthentication(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/orders", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestOrderFlowWithRoles(t *testing.T) {
	s := setupServer(t)

	operator := registerAccount(t, s, "operator@example.com", userdomain.RoleOperator)
	manager := registerAccount(t, s, "manager@example.com", userdomain.RoleManager)

	dueDate := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	rec := doJSON(t, s, http.MethodPost, "/api/orders", operator, map[string]any{
		"client":     "Empresa ABC Ltda",
		"product":    "Notebook Dell Inspiron 15",
		"quantity":   10,
		"unit_price": 5.0,
		"due_date":   dueDate,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: status %d body %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data struct {
			ID    string  `json:"id"`
			Total float64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Data.Total != 50.0 {
		t.Fatalf("expected total 50.0, got %v", created.Data.Total)
	}

	// Stats are a manager capability.
	if rec := doJSON(t, s, http.MethodGet, "/api/orders/stats", operator, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator stats, got %d body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, s, http.MethodGet, "/api/orders/stats", manager, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager stats, got %d body %s", rec.Code, rec.Body.String())
	}

	// Invoice issuance is gated the same way.
	rec = doJSON(t, s, http.MethodPost, "/api/invoices", manager, map[string]any{
		"number":   "NF001",
		"series":   "001",
		"type":     "outbound",
		"due_date": dueDate,
		"client":   map[string]any{"name": "Empresa ABC Ltda"},
		"items": []map[string]any{
			{"product": "Notebook Dell Inspiron 15", "quantity": 10, "unit_price": 5.0},
		},
		"taxes":    map[string]any{"icms": 5.0, "pis": 1.0, "cofins": 2.0},
		"order_id": created.Data.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create invoice: status %d body %s", rec.Code, rec.Body.String())
	}

	var invoice struct {
		Data struct {
			ID    string  `json:"id"`
			Total float64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &invoice); err != nil {
		t.Fatal(err)
	}
	if invoice.Data.Total != 58.0 {
		t.Fatalf("expected invoice total 58.0, got %v", invoice.Data.Total)
	}

	if rec := doJSON(t, s, http.MethodPatch, "/api/invoices/"+invoice.Data.ID+"/issue", operator, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator issue, got %d body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, s, http.MethodPatch, "/api/invoices/"+invoice.Data.ID+"/issue", manager, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager issue, got %d body %s", rec.Code, rec.Body.String())
	}

	// A second invoice for the same order is a conflict.
	rec = doJSON(t, s, http.MethodPost, "/api/invoices", manager, map[string]any{
		"number":   "NF002",
		"series":   "001",
		"type":     "outbound",
		"due_date": dueDate,
		"client":   map[string]any{"name": "Empresa ABC Ltda"},
		"items": []map[string]any{
			{"product": "Notebook Dell Inspiron 15", "quantity": 1, "unit_price": 5.0},
		},
		"order_id": created.Data.ID,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate invoice, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestValidationErrorsListEveryField(t *testing.T) {
	s := setupServer(t)
	operator := registerAccount(t, s, "operator@example.com", userdomain.RoleOperator)

	rec := doJSON(t, s, http.MethodPost, "/api/orders", operator, map[string]any{
		"client":     "x",
		"product":    "y",
		"quantity":   0,
		"unit_price": -1,
		"due_date":   "nope",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error struct {
			Type   string `json:"type"`
			Errors []struct {
				Field string `json:"field"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", resp.Error.Type)
	}
	if len(resp.Error.Errors) != 5 {
		t.Fatalf("expected 5 field errors, got %d: %s", len(resp.Error.Errors), rec.Body.String())
	}
}

func TestDisabledAccountGetsUnauthorized(t *testing.T) {
	s := setupServer(t)

	token := registerAccount(t, s, "maria@example.com", userdomain.RoleOperator)

	if err := s.db.Model(&userdomain.User{}).Where("email = ?", "maria@example.com").Update("active", false).Error; err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, s, http.MethodPost, "/api/users/login", "", map[string]any{
		"email":    "maria@example.com",
		"password": "secret1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login on disabled account: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/orders", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("session of disabled account: status %d body %s", rec.Code, rec.Body.String())
	}
}
