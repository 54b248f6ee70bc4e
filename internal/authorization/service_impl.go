package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectUser    = "user"
	ObjectOrder   = "order"
	ObjectInvoice = "invoice"
	ObjectStats   = "stats"
)

const (
	ActionUserView   = "user.view"
	ActionUserCreate = "user.create"
	ActionUserUpdate = "user.update"
	ActionUserDelete = "user.delete"

	ActionOrderView   = "order.view"
	ActionOrderCreate = "order.create"
	ActionOrderUpdate = "order.update"
	ActionOrderDelete = "order.delete"

	ActionInvoiceView   = "invoice.view"
	ActionInvoiceCreate = "invoice.create"
	ActionInvoiceUpdate = "invoice.update"
	ActionInvoiceIssue  = "invoice.issue"
	ActionInvoiceCancel = "invoice.cancel"
	ActionInvoicePay    = "invoice.pay"

	ActionStatsView = "stats.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, requester userdomain.Requester, object string, action string) error {
	if requester.ID == 0 || !requester.Role.Valid() {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := roleSubject(requester.Role)
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("user_id", requester.ID.String()),
			zap.String("role", string(requester.Role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func roleSubject(role userdomain.Role) string {
	return fmt.Sprintf("role:%s", strings.ToLower(string(role)))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Operator permissions
		{"role:operator", ObjectOrder, ActionOrderView},
		{"role:operator", ObjectOrder, ActionOrderCreate},
		{"role:operator", ObjectOrder, ActionOrderUpdate},
		{"role:operator", ObjectOrder, ActionOrderDelete},
		{"role:operator", ObjectInvoice, ActionInvoiceView},

		// Manager permissions
		{"role:manager", ObjectInvoice, ActionInvoiceCreate},
		{"role:manager", ObjectInvoice, ActionInvoiceUpdate},
		{"role:manager", ObjectInvoice, ActionInvoiceIssue},
		{"role:manager", ObjectInvoice, ActionInvoiceCancel},
		{"role:manager", ObjectInvoice, ActionInvoicePay},
		{"role:manager", ObjectStats, ActionStatsView},

		// Admin permissions
		{"role:admin", ObjectUser, ActionUserView},
		{"role:admin", ObjectUser, ActionUserCreate},
		{"role:admin", ObjectUser, ActionUserUpdate},
		{"role:admin", ObjectUser, ActionUserDelete},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	// Role hierarchy: admin inherits manager, manager inherits operator.
	groupings := [][]string{
		{"role:admin", "role:manager"},
		{"role:manager", "role:operator"},
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping[0], grouping[1]); err != nil {
			return err
		}
	}
	return nil
}
