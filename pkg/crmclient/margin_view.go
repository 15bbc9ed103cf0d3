package crmclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"go.uber.org/zap"
)

// DefaultFreightDelay is how long a freight edit waits for further typing
// before it is written.
const DefaultFreightDelay = 500 * time.Millisecond

type rowKey struct {
	proformaID string
	orderID    string
}

type freightWrite struct {
	timer    clock.Timer
	amount   float64
	seq      uint64
	inflight int
}

// MarginTotals are the footer sums of the margin sheet.
type MarginTotals struct {
	ProformaAmount float64
	PurchaseAmount float64
	Freight        float64
	Margin         float64
}

// MarginView is the margin sheet. Freight edits show the new margin at
// once and are written after a quiet period; a failed write reloads the
// whole sheet.
type MarginView struct {
	api     *Client
	view    *View
	clock   clock.Clock
	delay   time.Duration
	log     *zap.Logger
	onError func(error)

	mu      sync.Mutex
	rows    []MarginRow
	writes  map[rowKey]*freightWrite
	nextSeq uint64
}

type MarginViewOption func(*MarginView)

// WithFreightDelay overrides DefaultFreightDelay.
func WithFreightDelay(d time.Duration) MarginViewOption {
	return func(v *MarginView) { v.delay = d }
}

// OnWriteError is called after a failed freight write, before the reload.
func OnWriteError(fn func(error)) MarginViewOption {
	return func(v *MarginView) { v.onError = fn }
}

// NewMarginView binds the sheet to view; closing view cancels its writes.
func (c *Client) NewMarginView(view *View, opts ...MarginViewOption) *MarginView {
	v := &MarginView{
		api:    c,
		view:   view,
		clock:  c.clock,
		delay:  DefaultFreightDelay,
		log:    c.log.Named("margin"),
		writes: map[rowKey]*freightWrite{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load replaces the rows with the server's list. Rows with a write still
// scheduled or in flight keep their local freight.
func (v *MarginView) Load(ctx context.Context) error {
	rows, err := v.api.ListMargins(ctx)
	if err != nil {
		return err
	}
	return Deliver(v.view, succeeded(rows), func(r Result[[]MarginRow]) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.rows = r.Value
		for i := range v.rows {
			row := &v.rows[i]
			if w, ok := v.writes[rowKey{row.ProformaInvoiceID, row.PurchaseOrderID}]; ok {
				row.FreightAmount = w.amount
				row.MarginAmount = lineitem.Sub(row.RemainingAmount, w.amount)
			}
		}
	})
}

// Rows returns a copy of the current rows, including unsaved edits.
func (v *MarginView) Rows() []MarginRow {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]MarginRow, len(v.rows))
	copy(out, v.rows)
	return out
}

func (v *MarginView) Totals() MarginTotals {
	v.mu.Lock()
	defer v.mu.Unlock()
	var pi, po, freight, margin []float64
	for _, row := range v.rows {
		pi = append(pi, row.ProformaTotalAmount)
		po = append(po, row.PurchaseOrderAmount)
		freight = append(freight, row.FreightAmount)
		margin = append(margin, row.MarginAmount)
	}
	return MarginTotals{
		ProformaAmount: lineitem.Sum(pi...),
		PurchaseAmount: lineitem.Sum(po...),
		Freight:        lineitem.Sum(freight...),
		Margin:         lineitem.Sum(margin...),
	}
}

// SetFreight updates the row locally and schedules the write. Edits to the
// same row within the delay collapse into one request.
func (v *MarginView) SetFreight(proformaID, orderID string, amount float64) {
	key := rowKey{proformaID, orderID}

	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.rows {
		row := &v.rows[i]
		if row.ProformaInvoiceID == proformaID && row.PurchaseOrderID == orderID {
			row.FreightAmount = amount
			row.MarginAmount = lineitem.Sub(row.RemainingAmount, amount)
		}
	}

	w, ok := v.writes[key]
	if !ok {
		w = &freightWrite{}
		v.writes[key] = w
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	v.nextSeq++
	w.amount = amount
	w.seq = v.nextSeq
	seq := w.seq
	w.timer = v.clock.AfterFunc(v.delay, func() { v.fire(key, seq) })
}

// Pending reports whether a row has a write scheduled or in flight.
func (v *MarginView) Pending(proformaID, orderID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.writes[rowKey{proformaID, orderID}]
	return ok
}

// PendingCount is the number of rows waiting on a write.
func (v *MarginView) PendingCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.writes)
}

// Flush sends every scheduled write now and waits for them.
func (v *MarginView) Flush(ctx context.Context) error {
	type job struct {
		key rowKey
		seq uint64
	}

	v.mu.Lock()
	var jobs []job
	for key, w := range v.writes {
		if w.timer == nil {
			continue
		}
		w.timer.Stop()
		w.timer = nil
		jobs = append(jobs, job{key, w.seq})
	}
	v.mu.Unlock()

	var errs []error
	for _, j := range jobs {
		if err := v.write(ctx, j.key, j.seq); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v *MarginView) fire(key rowKey, seq uint64) {
	v.mu.Lock()
	w, ok := v.writes[key]
	if !ok || w.seq != seq {
		v.mu.Unlock()
		return
	}
	w.timer = nil
	v.mu.Unlock()

	_ = v.write(v.view.Context(), key, seq)
}

func (v *MarginView) write(ctx context.Context, key rowKey, seq uint64) error {
	v.mu.Lock()
	w, ok := v.writes[key]
	if !ok {
		v.mu.Unlock()
		return nil
	}
	amount := w.amount
	w.inflight++
	v.mu.Unlock()

	err := v.api.UpdateFreight(ctx, key.proformaID, key.orderID, amount)

	v.mu.Lock()
	w.inflight--
	if w.inflight == 0 && w.timer == nil && w.seq == seq {
		delete(v.writes, key)
	}
	v.mu.Unlock()

	if err == nil {
		return nil
	}
	if v.view.Closed() {
		return ErrViewClosed
	}

	v.log.Warn("freight write failed",
		zap.String("proforma_invoice_id", key.proformaID),
		zap.String("purchase_order_id", key.orderID),
		zap.Error(err),
	)
	res := failed[struct{}](err, RollbackRefetch)
	return res.Apply(v.view.Context(), Recovery{
		Refetch: v.Load,
		Notify:  v.onError,
	})
}
