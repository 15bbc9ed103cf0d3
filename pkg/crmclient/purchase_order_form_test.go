package crmclient

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderPurpose(t *testing.T) {
	h := newHarness(t, NamespaceCRM)
	f := h.client.NewPurchaseOrderForm()
	assert.Equal(t, PurposeStockInSale, f.Purpose())

	require.NoError(t, f.Editor.SetProduct(0, "Router"))
	require.NoError(t, f.Editor.SetQuantity(0, "2"))
	require.NoError(t, f.SetPurpose(PurposeLinked))
	assert.ErrorIs(t, f.Validate(), ErrProformaRequired)

	f.SelectProformaInvoice(ProformaInvoice{ID: "90", ProformaInvoiceNumber: "PI-1"})
	assert.NoError(t, f.Validate())

	require.NoError(t, f.SetPurpose(PurposeStockInSale))
	id, number := f.ProformaInvoice()
	assert.Empty(t, id)
	assert.Empty(t, number)

	require.NoError(t, f.SetPurpose(PurposeLinked))
	assert.ErrorIs(t, f.Validate(), ErrProformaRequired)

	assert.ErrorIs(t, f.SetPurpose("resale"), ErrInvalidPurpose)
	assert.Equal(t, PurposeLinked, f.Purpose())
}

func TestPurchaseOrderSubmit(t *testing.T) {
	h := newHarness(t, NamespaceCRM)
	h.signIn(t)
	h.api.handle("POST /api/purchase-orders", func(w http.ResponseWriter, r *http.Request) {
		var in purchaseOrderInput
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&in)) {
			return
		}
		assert.Equal(t, PurposeLinked, in.Purpose)
		if assert.NotNil(t, in.ProformaInvoiceID) {
			assert.Equal(t, "90", *in.ProformaInvoiceID)
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "55", "purchase_order_number": in.PurchaseOrderNumber, "purpose": in.Purpose})
	})

	f := h.client.NewPurchaseOrderForm()
	before := h.api.total()
	require.NoError(t, f.SetPurpose(PurposeLinked))
	res := f.Submit(t.Context())
	assert.Equal(t, StateRejected, res.State)
	assert.Equal(t, before, h.api.total())

	f.Number = "PO-1"
	f.VendorName = "Net Supplies"
	f.Date = "2024-03-02"
	require.NoError(t, f.Editor.SetProduct(0, "Router"))
	require.NoError(t, f.Editor.SetQuantity(0, "4"))
	require.NoError(t, f.Editor.SetPrice(0, "1500"))
	f.SelectProformaInvoice(ProformaInvoice{ID: "90", ProformaInvoiceNumber: "PI-1"})

	res = f.Submit(t.Context())
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, "55", res.Value.ID)
	assert.Equal(t, 1, h.api.count("POST /api/purchase-orders"))
}

func TestStockOrderSendsNoProforma(t *testing.T) {
	h := newHarness(t, NamespaceCRM)
	h.signIn(t)
	h.api.reply("POST /api/purchase-orders", http.StatusOK, map[string]any{"id": "56"})

	f := h.client.NewPurchaseOrderForm()
	f.Number = "PO-2"
	f.VendorName = "Stock Co"
	f.Date = "2024-03-02"
	require.NoError(t, f.Editor.SetProduct(0, "Cable"))
	require.NoError(t, f.Editor.SetQuantity(0, "10"))

	require.True(t, f.Submit(t.Context()).OK())
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(h.api.lastBody("POST /api/purchase-orders")), &sent))
	assert.Equal(t, "stock_in_sale", sent["purpose"])
	assert.Nil(t, sent["proforma_invoice_id"])
}

func TestOverlappingPurchaseOrderSubmitSendsOnce(t *testing.T) {
	h := newHarness(t, NamespaceCRM)
	h.signIn(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	h.api.handle("POST /api/purchase-orders", func(w http.ResponseWriter, _ *http.Request) {
		close(entered)
		<-release
		writeJSON(w, http.StatusOK, map[string]any{"id": "55", "purchase_order_number": "PO-1", "purpose": PurposeStockInSale})
	})

	f := h.client.NewPurchaseOrderForm()
	f.Number = "PO-1"
	require.NoError(t, f.Editor.SetProduct(0, "Router"))
	require.NoError(t, f.Editor.SetQuantity(0, "4"))

	first := make(chan Result[PurchaseOrder], 1)
	go func() { first <- f.Submit(t.Context()) }()
	<-entered

	second := f.Submit(t.Context())
	assert.ErrorIs(t, second.Err, ErrSubmitInProgress)

	close(release)
	require.True(t, (<-first).OK())
	assert.Equal(t, 1, h.api.count("POST /api/purchase-orders"))
}
