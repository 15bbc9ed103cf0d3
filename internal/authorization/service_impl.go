package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	NamespaceCRM    = "crm"
	NamespaceGemBid = "gem_bid"

	roleAdmin = "role:admin"
)

const (
	ObjectCustomer        = "customer"
	ObjectLead            = "lead"
	ObjectProformaInvoice = "proforma_invoice"
	ObjectPurchaseOrder   = "purchase_order"
	ObjectMargin          = "margin"
	ObjectDashboard       = "dashboard"
	ObjectBid             = "bid"
	ObjectBidOrder        = "bid_order"
	ObjectScheduler       = "scheduler"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

var namespaceObjects = map[string][]string{
	NamespaceCRM: {
		ObjectCustomer,
		ObjectLead,
		ObjectProformaInvoice,
		ObjectPurchaseOrder,
		ObjectMargin,
		ObjectDashboard,
	},
	NamespaceGemBid: {
		ObjectBid,
		ObjectBidOrder,
		ObjectScheduler,
	},
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
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
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, namespace, email, object, action string) error {
	subject, err := userSubject(email)
	if err != nil {
		return err
	}
	namespace = strings.TrimSpace(namespace)
	if _, ok := namespaceObjects[namespace]; !ok {
		return ErrInvalidNamespace
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject, namespace, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("namespace", namespace),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) GrantAdmin(ctx context.Context, namespace, email string) error {
	subject, err := userSubject(email)
	if err != nil {
		return err
	}
	if _, ok := namespaceObjects[namespace]; !ok {
		return ErrInvalidNamespace
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleAdmin, namespace)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleAdmin, namespace)
	return err
}

func userSubject(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidActor
	}
	return fmt.Sprintf("user:%s", email), nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	actions := []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}
	for namespace, objects := range namespaceObjects {
		for _, object := range objects {
			for _, action := range actions {
				has, err := enforcer.HasPolicy(roleAdmin, namespace, object, action)
				if err != nil {
					return err
				}
				if has {
					continue
				}
				if _, err := enforcer.AddPolicy(roleAdmin, namespace, object, action); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
