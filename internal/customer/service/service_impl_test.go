package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/customer/domain"
	"github.com/rutujak-bora/crm/internal/customer/repository"
	"github.com/rutujak-bora/crm/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    dbtest.Open(t, &domain.Customer{}),
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, clk
}

func input(name string) domain.CustomerInput {
	return domain.CustomerInput{
		CustomerName:  name,
		ContactNumber: "9876543210",
		Email:         "buyer@example.com",
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   domain.CustomerInput
		wantErr error
	}{
		{name: "missing name", input: domain.CustomerInput{ContactNumber: "1", Email: "a@b.c"}, wantErr: domain.ErrInvalidName},
		{name: "missing contact", input: domain.CustomerInput{CustomerName: "Acme", Email: "a@b.c"}, wantErr: domain.ErrInvalidContact},
		{name: "bad email", input: domain.CustomerInput{CustomerName: "Acme", ContactNumber: "1", Email: "nope"}, wantErr: domain.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateListGetUpdateDelete(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	ref := "  REF001 "
	acme := input("Acme Traders")
	acme.ReferenceName = &ref
	created, err := svc.Create(ctx, acme)
	require.NoError(t, err)
	require.NotNil(t, created.ReferenceName)
	assert.Equal(t, "REF001", *created.ReferenceName)

	clk.Advance(time.Minute)
	_, err = svc.Create(ctx, input("Globex"))
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.ListCustomerRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Globex", all[0].CustomerName)

	filtered, err := svc.List(ctx, domain.ListCustomerRequest{Name: "acme"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, created.ID, filtered[0].ID)

	byName, err := svc.FindByName(ctx, "ACME TRADERS")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	updated, err := svc.Update(ctx, created.ID.String(), input("Acme Traders Pvt"))
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders Pvt", updated.CustomerName)
	assert.Nil(t, updated.ReferenceName)
	assert.True(t, created.CreatedDate.Equal(updated.CreatedDate))

	require.NoError(t, svc.Delete(ctx, created.ID.String()))
	_, err = svc.GetByID(ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID.String()), domain.ErrNotFound)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetByIDRejectsMalformedID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetByID(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
