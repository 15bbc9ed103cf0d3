package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/clock"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	pirepo "github.com/rutujak-bora/crm/internal/proformainvoice/repository"
	"github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"github.com/rutujak-bora/crm/internal/purchaseorder/repository"
	"github.com/rutujak-bora/crm/pkg/db/dbtest"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	pi    pidomain.ProformaInvoice
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))
	db := dbtest.Open(t, &pidomain.ProformaInvoice{}, &domain.PurchaseOrder{})

	invoices := pirepo.Provide()
	pi := pidomain.ProformaInvoice{
		ID:                    node.Generate(),
		ProformaInvoiceNumber: "PI-2024-001",
		CustomerID:            1,
		CustomerName:          "Acme",
		Date:                  "2024-03-30",
		Products:              datatypes.NewJSONSlice([]lineitem.Item{}),
		TotalAmount:           10000,
		CreatedDate:           clk.Now(),
		LeadID:                1,
	}
	require.NoError(t, invoices.Insert(context.Background(), db, &pi))

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		InvoiceRepo: invoices,
	})
	return fixture{svc: svc, db: db, node: node, clock: clk, pi: pi}
}

func strPtr(s string) *string { return &s }

func input(purpose string, items ...lineitem.Item) domain.PurchaseOrderInput {
	return domain.PurchaseOrderInput{
		PurchaseOrderNumber: "PO-1",
		Date:                "2024-04-01",
		VendorName:          "Dell India",
		Purpose:             purpose,
		Products:            items,
	}
}

func item(product, category string, quantity, price float64) lineitem.Item {
	return lineitem.Item{Product: product, Category: category, Quantity: quantity, Price: price}
}

func TestCreateLinkedResolvesInvoiceNumber(t *testing.T) {
	f := newFixture(t)

	in := input("linked", item("Laptop", "IT", 2, 3000))
	in.ProformaInvoiceID = strPtr(f.pi.ID.String())
	in.ProformaInvoiceNumber = strPtr("stale")

	po, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, po.ProformaInvoiceID)
	assert.Equal(t, f.pi.ID, *po.ProformaInvoiceID)
	assert.Equal(t, "PI-2024-001", *po.ProformaInvoiceNumber)
	assert.Equal(t, 6000.0, po.TotalAmount)
}

func TestCreateValidatesPurposeAndLinkage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, input("linked", item("Laptop", "IT", 1, 1)))
	assert.ErrorIs(t, err, domain.ErrProformaRequired)

	missing := input("linked", item("Laptop", "IT", 1, 1))
	missing.ProformaInvoiceID = strPtr("123456")
	_, err = f.svc.Create(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrProformaNotFound)

	_, err = f.svc.Create(ctx, input("resale", item("Laptop", "IT", 1, 1)))
	assert.ErrorIs(t, err, domain.ErrInvalidPurpose)

	_, err = f.svc.Create(ctx, input("stock_in_sale", item("Laptop", "IT", 0, 1)))
	assert.ErrorIs(t, err, lineitem.ErrNoValidProduct)

	noVendor := input("stock_in_sale", item("Laptop", "IT", 1, 1))
	noVendor.VendorName = " "
	_, err = f.svc.Create(ctx, noVendor)
	assert.ErrorIs(t, err, domain.ErrInvalidVendor)
}

func TestStockInSaleClearsLinkage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := input("linked", item("Laptop", "IT", 1, 100))
	in.ProformaInvoiceID = strPtr(f.pi.ID.String())
	po, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	in.Purpose = "stock_in_sale"
	updated, err := f.svc.Update(ctx, po.ID.String(), in)
	require.NoError(t, err)
	assert.Nil(t, updated.ProformaInvoiceID)
	assert.Nil(t, updated.ProformaInvoiceNumber)

	stored, err := f.svc.GetByID(ctx, po.ID.String())
	require.NoError(t, err)
	assert.Nil(t, stored.ProformaInvoiceID)
	assert.Equal(t, domain.PurposeStockInSale, stored.Purpose)
}

func TestPartNumbersAreDropped(t *testing.T) {
	f := newFixture(t)

	laptop := item("Laptop", "IT", 1, 100)
	laptop.PartNumber = strPtr("LP-1")
	po, err := f.svc.Create(context.Background(), input("stock_in_sale", laptop))
	require.NoError(t, err)
	assert.Nil(t, po.Products[0].PartNumber)
}

func TestListFiltersAndLegacyRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, input("stock_in_sale", item("Laptop", "IT Hardware", 1, 100)))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	legacyProduct, legacyCategory := "Printer", "Office Equipment"
	qty, price, amount := 2.0, 150.0, 300.0
	legacy := domain.PurchaseOrder{
		ID:                  f.node.Generate(),
		PurchaseOrderNumber: "PO-OLD",
		Date:                "2023-12-01",
		VendorName:          "HP Store",
		Purpose:             domain.PurposeStockInSale,
		CreatedDate:         f.clock.Now(),
		LegacyProduct:       &legacyProduct,
		LegacyCategory:      &legacyCategory,
		LegacyQuantity:      &qty,
		LegacyPrice:         &price,
		LegacyAmount:        &amount,
	}
	require.NoError(t, f.db.Create(&legacy).Error)

	all, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "PO-OLD", all[0].PurchaseOrderNumber)
	require.Len(t, all[0].Products, 1)
	assert.Equal(t, "Printer", all[0].Products[0].Product)
	assert.Equal(t, 300.0, all[0].TotalAmount)

	office, err := f.svc.List(ctx, domain.ListRequest{Category: "office"})
	require.NoError(t, err)
	require.Len(t, office, 1)
	assert.Equal(t, "PO-OLD", office[0].PurchaseOrderNumber)

	byVendor, err := f.svc.List(ctx, domain.ListRequest{VendorName: "DELL"})
	require.NoError(t, err)
	require.Len(t, byVendor, 1)

	byDate, err := f.svc.List(ctx, domain.ListRequest{Date: "2023-12-01"})
	require.NoError(t, err)
	require.Len(t, byDate, 1)

	linked, err := f.svc.List(ctx, domain.ListRequest{Purpose: "linked"})
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestRepeatedListIsByteIdentical(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, input("stock_in_sale", item("Laptop", "IT", float64(i+1), 10)))
		require.NoError(t, err)
	}

	first, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	second, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	po, err := f.svc.Create(ctx, input("stock_in_sale", item("Laptop", "IT", 1, 10)))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, po.ID.String()))
	assert.ErrorIs(t, f.svc.Delete(ctx, po.ID.String()), domain.ErrNotFound)
	_, err = f.svc.GetByID(ctx, po.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
