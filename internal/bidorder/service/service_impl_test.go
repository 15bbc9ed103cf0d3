package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/bidorder/domain"
	"github.com/rutujak-bora/crm/internal/bidorder/repository"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	db := dbtest.Open(t, &domain.Order{})

	svc := New(Params{DB: db, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: repository.Provide()})
	return svc, db, clk
}

func TestCreateComputesRemaining(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, domain.OrderInput{
		GemBidNo: " GEM/2024/B/77 ",
		Items: []domain.Item{
			{SKU: "LAP-01", Vendor: "Dell", Price: 50000, Quantity: 2, InvoiceValue: 100000.55, AdvancePaid: 40000.2, RemainingAmount: 1},
			{SKU: "MON-02", Vendor: "LG", Price: 9000, Quantity: 1, InvoiceValue: 0.3, AdvancePaid: 0.1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "GEM/2024/B/77", order.GemBidNo)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 60000.35, order.Items[0].RemainingAmount)
	assert.Equal(t, 0.2, order.Items[1].RemainingAmount)

	stored, err := svc.GetByID(ctx, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, order.Items[0], stored.Items[0])
}

func TestCreateValidates(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.OrderInput{GemBidNo: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidBidNo)

	_, err = svc.Create(ctx, domain.OrderInput{GemBidNo: "G-1", Items: []domain.Item{{SKU: "A", AdvancePaid: -1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestUpdateListDelete(t *testing.T) {
	svc, _, clk := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.OrderInput{GemBidNo: "G-1"})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	second, err := svc.Create(ctx, domain.OrderInput{GemBidNo: "G-2", Items: []domain.Item{{SKU: "X", InvoiceValue: 10}}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, first.ID.String(), domain.OrderInput{
		GemBidNo: "G-1",
		Items:    []domain.Item{{SKU: "Y", InvoiceValue: 50, AdvancePaid: 20}},
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.Items[0].RemainingAmount)
	assert.Equal(t, first.CreatedDate, updated.CreatedDate)

	orders, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)

	require.NoError(t, svc.Delete(ctx, first.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, first.ID.String()), domain.ErrNotFound)
	_, err = svc.GetByID(ctx, first.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Update(ctx, "oops", domain.OrderInput{GemBidNo: "G"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestLegacyRowIsPresentedAsOneItem(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	sku := "OLD-SKU"
	invoice := 1200.0
	remaining := 200.0
	legacy := domain.Order{
		ID:                    99,
		GemBidNo:              "G-OLD",
		CreatedDate:           time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		LegacySKU:             &sku,
		LegacyInvoiceValue:    &invoice,
		LegacyRemainingAmount: &remaining,
	}
	require.NoError(t, db.Create(&legacy).Error)

	got, err := svc.GetByID(ctx, "99")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, domain.Item{SKU: "OLD-SKU", Vendor: "-", InvoiceValue: 1200, RemainingAmount: 200}, got.Items[0])

	updated, err := svc.Update(ctx, "99", domain.OrderInput{GemBidNo: "G-OLD", Items: []domain.Item{{SKU: "NEW"}}})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)

	var raw domain.Order
	require.NoError(t, db.Where("id = ?", 99).First(&raw).Error)
	assert.Nil(t, raw.LegacySKU)
	assert.Equal(t, "NEW", raw.Items[0].SKU)
}
