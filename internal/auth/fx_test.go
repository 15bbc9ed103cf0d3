package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/auth/domain"
	"github.com/rutujak-bora/crm/internal/auth/repository"
	"github.com/rutujak-bora/crm/internal/auth/service"
	"github.com/rutujak-bora/crm/internal/authorization"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/config"
	"github.com/rutujak-bora/crm/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureDefaultUsers(t *testing.T) {
	db := dbtest.Open(t, &domain.User{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{}
	cfg.Auth.JWTSecret = "s"
	cfg.Auth.TokenTTL = time.Minute
	cfg.Auth.CRMUser = config.DefaultUser{Email: "crm@example.com", Password: "pw", Name: "CRM Admin"}

	svc := service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   cfg,
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authz := authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: enforcer})

	ctx := context.Background()
	require.NoError(t, EnsureDefaultUsers(ctx, cfg, svc, authz, zap.NewNop()))

	res, err := svc.Login(ctx, domain.LoginRequest{Namespace: domain.NamespaceCRM, Email: "crm@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "CRM Admin", res.User.Name)

	assert.NoError(t, authz.Authorize(ctx, authorization.NamespaceCRM, "crm@example.com", authorization.ObjectLead, authorization.ActionCreate))
	assert.ErrorIs(t, authz.Authorize(ctx, authorization.NamespaceGemBid, "crm@example.com", authorization.ObjectBid, authorization.ActionView), authorization.ErrForbidden)
}
