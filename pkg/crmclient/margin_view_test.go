package crmclient

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marginRows(freight, margin float64) []map[string]any {
	return []map[string]any{{
		"proforma_invoice_number": "PI-1", "proforma_invoice_id": "90", "proforma_total_amount": 10000,
		"purchase_order_number": "PO-1", "purchase_order_id": "55", "purchase_order_amount": 6000,
		"remaining_amount": 4000, "freight_amount": freight, "margin_amount": margin,
	}}
}

func newMarginHarness(t *testing.T) (*harness, *MarginView) {
	t.Helper()
	h := newHarness(t, NamespaceCRM)
	h.signIn(t)
	h.api.reply("GET /api/margin-calculator", http.StatusOK, marginRows(0, 4000))

	view := NewView(t.Context())
	t.Cleanup(view.Close)
	mv := h.client.NewMarginView(view)
	require.NoError(t, mv.Load(view.Context()))
	return h, mv
}

func TestFreightEditIsLocalUntilDebounceFires(t *testing.T) {
	h, mv := newMarginHarness(t)
	h.api.reply("PUT /api/margin-calculator/90/55", http.StatusOK, map[string]string{"message": "Freight updated"})

	mv.SetFreight("90", "55", 500)

	rows := mv.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 4000.0, rows[0].RemainingAmount)
	assert.Equal(t, 3500.0, rows[0].MarginAmount)
	assert.True(t, mv.Pending("90", "55"))
	assert.Equal(t, 0, h.api.count("PUT /api/margin-calculator/90/55"))

	h.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, h.api.count("PUT /api/margin-calculator/90/55"))

	h.clock.Advance(time.Millisecond)
	assert.Equal(t, 1, h.api.count("PUT /api/margin-calculator/90/55"))
	assert.JSONEq(t, `{"freight_amount":500}`, h.api.lastBody("PUT /api/margin-calculator/90/55"))
	assert.False(t, mv.Pending("90", "55"))
	assert.Equal(t, 3500.0, mv.Totals().Margin)
}

func TestFreightEditsCollapse(t *testing.T) {
	h, mv := newMarginHarness(t)
	h.api.reply("PUT /api/margin-calculator/90/55", http.StatusOK, map[string]string{"message": "Freight updated"})

	for _, v := range []float64{5, 50, 500} {
		mv.SetFreight("90", "55", v)
		h.clock.Advance(200 * time.Millisecond)
	}
	assert.Equal(t, 0, h.api.count("PUT /api/margin-calculator/90/55"))

	h.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, h.api.count("PUT /api/margin-calculator/90/55"))
	assert.JSONEq(t, `{"freight_amount":500}`, h.api.lastBody("PUT /api/margin-calculator/90/55"))
	assert.Equal(t, 0, mv.PendingCount())
}

func TestFailedFreightWriteRefetches(t *testing.T) {
	h, mv := newMarginHarness(t)
	h.api.reply("PUT /api/margin-calculator/90/55", http.StatusBadRequest, map[string]string{"detail": "Freight amount cannot be negative"})

	var notified atomic.Value
	view := NewView(t.Context())
	defer view.Close()
	mv = h.client.NewMarginView(view, OnWriteError(func(err error) { notified.Store(DetailOf(err, "")) }))
	require.NoError(t, mv.Load(view.Context()))
	loads := h.api.count("GET /api/margin-calculator")
	timers := h.clock.Pending()

	mv.SetFreight("90", "55", -1)
	assert.Equal(t, 4001.0, mv.Rows()[0].MarginAmount)

	require.Error(t, mv.Flush(view.Context()))
	assert.Equal(t, loads+1, h.api.count("GET /api/margin-calculator"))
	assert.Equal(t, 4000.0, mv.Rows()[0].MarginAmount)
	assert.Equal(t, "Freight amount cannot be negative", notified.Load())
	assert.False(t, mv.Pending("90", "55"))
	assert.Equal(t, timers, h.clock.Pending())
}

func TestRefetchKeepsOtherRowsPendingFreight(t *testing.T) {
	h, _ := newMarginHarness(t)
	rows := append(marginRows(0, 4000), map[string]any{
		"proforma_invoice_number": "PI-2", "proforma_invoice_id": "91", "proforma_total_amount": 9000,
		"purchase_order_number": "PO-2", "purchase_order_id": "56", "purchase_order_amount": 5000,
		"remaining_amount": 4000, "freight_amount": 0, "margin_amount": 4000,
	})
	h.api.reply("GET /api/margin-calculator", http.StatusOK, rows)
	h.api.reply("PUT /api/margin-calculator/90/55", http.StatusBadRequest, map[string]string{"detail": "Margin record not found"})
	h.api.reply("PUT /api/margin-calculator/91/56", http.StatusOK, map[string]string{"message": "Freight updated"})

	view := NewView(t.Context())
	defer view.Close()
	mv := h.client.NewMarginView(view)
	require.NoError(t, mv.Load(view.Context()))
	loads := h.api.count("GET /api/margin-calculator")

	row := func(pi string) MarginRow {
		for _, r := range mv.Rows() {
			if r.ProformaInvoiceID == pi {
				return r
			}
		}
		t.Fatalf("row %s missing", pi)
		return MarginRow{}
	}

	mv.SetFreight("90", "55", 100)
	h.clock.Advance(300 * time.Millisecond)
	mv.SetFreight("91", "56", 500)
	h.clock.Advance(200 * time.Millisecond)

	require.Equal(t, 1, h.api.count("PUT /api/margin-calculator/90/55"))
	require.Equal(t, loads+1, h.api.count("GET /api/margin-calculator"))
	assert.Equal(t, 0.0, row("90").FreightAmount)
	assert.Equal(t, 4000.0, row("90").MarginAmount)
	assert.True(t, mv.Pending("91", "56"))
	assert.Equal(t, 500.0, row("91").FreightAmount)
	assert.Equal(t, 3500.0, row("91").MarginAmount)

	h.clock.Advance(300 * time.Millisecond)
	require.Equal(t, 1, h.api.count("PUT /api/margin-calculator/91/56"))
	assert.JSONEq(t, `{"freight_amount":500}`, h.api.lastBody("PUT /api/margin-calculator/91/56"))
	assert.False(t, mv.Pending("91", "56"))
	assert.Equal(t, 500.0, row("91").FreightAmount)
	assert.Equal(t, 3500.0, row("91").MarginAmount)
}

func TestFlushSendsScheduledWrites(t *testing.T) {
	h, mv := newMarginHarness(t)
	h.api.reply("PUT /api/margin-calculator/90/55", http.StatusOK, map[string]string{"message": "Freight updated"})

	timers := h.clock.Pending()
	mv.SetFreight("90", "55", 250)
	assert.Equal(t, timers+1, h.clock.Pending())
	require.NoError(t, mv.Flush(t.Context()))
	assert.Equal(t, 1, h.api.count("PUT /api/margin-calculator/90/55"))
	assert.Equal(t, timers, h.clock.Pending())

	h.clock.Advance(time.Second)
	assert.Equal(t, 1, h.api.count("PUT /api/margin-calculator/90/55"))
}

func TestClosedViewDropsReload(t *testing.T) {
	h, _ := newMarginHarness(t)
	view := NewView(t.Context())
	mv := h.client.NewMarginView(view)
	view.Close()

	err := mv.Load(t.Context())
	assert.ErrorIs(t, err, ErrViewClosed)
	assert.Empty(t, mv.Rows())
}
