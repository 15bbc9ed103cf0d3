package auth

import (
	"context"

	"github.com/rutujak-bora/crm/internal/auth/domain"
	"github.com/rutujak-bora/crm/internal/auth/repository"
	"github.com/rutujak-bora/crm/internal/auth/service"
	"github.com/rutujak-bora/crm/internal/authorization"
	"github.com/rutujak-bora/crm/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(registerDefaultUsers),
)

func registerDefaultUsers(lc fx.Lifecycle, cfg config.Config, svc domain.Service, authz authorization.Service, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return EnsureDefaultUsers(ctx, cfg, svc, authz, log)
		},
	})
}

// EnsureDefaultUsers seeds the configured account of each namespace and
// grants it the admin role. Namespaces without credentials are skipped.
func EnsureDefaultUsers(ctx context.Context, cfg config.Config, svc domain.Service, authz authorization.Service, log *zap.Logger) error {
	defaults := []struct {
		namespace domain.Namespace
		user      config.DefaultUser
	}{
		{domain.NamespaceCRM, cfg.Auth.CRMUser},
		{domain.NamespaceGemBid, cfg.Auth.GemBidUser},
	}

	for _, d := range defaults {
		if d.user.Email == "" || d.user.Password == "" {
			log.Warn("default user not configured", zap.String("namespace", string(d.namespace)))
			continue
		}
		user, err := svc.EnsureUser(ctx, domain.EnsureUserRequest{
			Namespace: d.namespace,
			Email:     d.user.Email,
			Password:  d.user.Password,
			Name:      d.user.Name,
		})
		if err != nil {
			return err
		}
		if err := authz.GrantAdmin(ctx, string(d.namespace), user.Email); err != nil {
			return err
		}
		log.Info("default user ensured", zap.String("namespace", string(d.namespace)))
	}
	return nil
}
