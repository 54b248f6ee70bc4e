package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/internal/config"
	"github.com/pedidofacil/pedidofacil/internal/user/domain"
	"github.com/pedidofacil/pedidofacil/internal/user/repository"
	pkgdb "github.com/pedidofacil/pedidofacil/pkg/db"
	"github.com/pedidofacil/pedidofacil/pkg/validate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupUserService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := pkgdb.NewTest(t.Name())
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Session{}); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Settings: config.Settings{
			DefaultPageSize: 10,
			MaxPageSize:     100,
			SessionTTLDays:  7,
			BcryptCost:      bcrypt.MinCost,
		},
		Repo:     repository.Provide(),
		Sessions: repository.ProvideSessions(),
	})
	return svc, db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, domain.RegisterRequest{
		Name:     "Maria Santos",
		Email:    "Maria@Example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.Email != "maria@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}
	if result.User.Role != domain.RoleOperator {
		t.Fatalf("expected default operator role, got %q", result.User.Role)
	}
	if result.Token == "" {
		t.Fatal("expected a session token")
	}

	login, err := svc.Login(ctx, domain.LoginRequest{Email: "maria@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Fatal("login resolved a different account")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterRequest{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "secret1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, badPassword := svc.Login(ctx, domain.LoginRequest{Email: "maria@example.com", Password: "wrong1"})
	_, unknownEmail := svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "wrong1"})

	if !errors.Is(badPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for bad password, got %v", badPassword)
	}
	if !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", unknownEmail)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	req := domain.RegisterRequest{Name: "Maria Santos", Email: "maria@example.com", Password: "secret1"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(ctx, req)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestRegisterCollectsAllViolations(t *testing.T) {
	svc, _ := setupUserService(t)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "x",
		Email:    "not-an-email",
		Password: "123",
		Role:     "boss",
	})

	var vErr *validate.Errors
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if len(vErr.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(vErr.Fields), vErr.Fields)
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, domain.RegisterRequest{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Email != "maria@example.com" {
		t.Fatalf("unexpected account %q", user.Email)
	}

	if err := svc.Logout(ctx, result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, result.Token); !errors.Is(err, domain.ErrSessionRevoked) {
		t.Fatalf("expected revoked session, got %v", err)
	}
}

func TestDisabledAccountCannotLogin(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, domain.RegisterRequest{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	disabled := false
	if _, err := svc.Update(ctx, result.User.ID.String(), domain.UpdateUserRequest{Active: &disabled}); err != nil {
		t.Fatalf("disable account: %v", err)
	}

	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "maria@example.com", Password: "secret1"}); !errors.Is(err, domain.ErrAccountDisabled) {
		t.Fatalf("expected disabled account, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, result.Token); !errors.Is(err, domain.ErrAccountDisabled) {
		t.Fatalf("expected disabled account on existing session, got %v", err)
	}
}

func TestSelfDeleteRejected(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, domain.RegisterRequest{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "secret1",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	requester := domain.Requester{ID: result.User.ID, Role: domain.RoleAdmin, Active: true}
	if err := svc.Delete(ctx, result.User.ID.String(), requester); !errors.Is(err, domain.ErrSelfDelete) {
		t.Fatalf("expected self delete rejection, got %v", err)
	}
}

func TestPublicViewOmitsPasswordHash(t *testing.T) {
	svc, _ := setupUserService(t)

	result, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	payload, err := json.Marshal(result.User)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(payload), "password") || strings.Contains(string(payload), "hash") {
		t.Fatalf("public payload leaks credential material: %s", payload)
	}
}

func TestRoleLattice(t *testing.T) {
	cases := []struct {
		role     domain.Role
		required domain.Role
		want     bool
	}{
		{domain.RoleAdmin, domain.RoleOperator, true},
		{domain.RoleAdmin, domain.RoleManager, true},
		{domain.RoleManager, domain.RoleOperator, true},
		{domain.RoleManager, domain.RoleAdmin, false},
		{domain.RoleOperator, domain.RoleManager, false},
		{domain.RoleOperator, domain.RoleOperator, true},
	}
	for _, tc := range cases {
		if got := tc.role.Can(tc.required); got != tc.want {
			t.Errorf("%s can %s = %v, want %v", tc.role, tc.required, got, tc.want)
		}
	}
}
