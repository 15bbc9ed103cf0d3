package authorization

import (
	"context"
	"testing"

	"github.com/rutujak-bora/crm/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	enforcer, err := NewEnforcer(dbtest.Open(t))
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorizeRequiresGrant(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.Authorize(ctx, NamespaceCRM, "admin@example.com", ObjectLead, ActionCreate)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.GrantAdmin(ctx, NamespaceCRM, "Admin@Example.com"))
	require.NoError(t, svc.GrantAdmin(ctx, NamespaceCRM, "admin@example.com"))

	assert.NoError(t, svc.Authorize(ctx, NamespaceCRM, "admin@example.com", ObjectLead, ActionCreate))
	assert.NoError(t, svc.Authorize(ctx, NamespaceCRM, "admin@example.com", ObjectMargin, ActionUpdate))
}

func TestAuthorizeIsScopedToNamespace(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GrantAdmin(ctx, NamespaceGemBid, "bids@example.com"))

	assert.NoError(t, svc.Authorize(ctx, NamespaceGemBid, "bids@example.com", ObjectBid, ActionDelete))
	assert.ErrorIs(t, svc.Authorize(ctx, NamespaceCRM, "bids@example.com", ObjectCustomer, ActionView), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, NamespaceGemBid, "bids@example.com", ObjectLead, ActionView), ErrForbidden)
}

func TestAuthorizeValidatesInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, NamespaceCRM, " ", ObjectLead, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "billing", "a@example.com", ObjectLead, ActionView), ErrInvalidNamespace)
	assert.ErrorIs(t, svc.Authorize(ctx, NamespaceCRM, "a@example.com", "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, NamespaceCRM, "a@example.com", ObjectLead, ""), ErrInvalidAction)
	assert.ErrorIs(t, svc.GrantAdmin(ctx, "billing", "a@example.com"), ErrInvalidNamespace)
}
