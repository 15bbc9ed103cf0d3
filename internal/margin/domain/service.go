package domain

import (
	"context"
	"errors"
)

type UpdateFreightRequest struct {
	ProformaInvoiceID string
	PurchaseOrderID   string
	FreightAmount     float64 `json:"freight_amount"`
}

type Service interface {
	List(context.Context) ([]Row, error)
	UpdateFreight(context.Context, UpdateFreightRequest) error
	// Summary sums invoice total minus linked order totals over every
	// invoice that has at least one linked order.
	Summary(context.Context) (float64, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrNegativeFreight  = errors.New("negative_freight")
	ErrProformaNotFound = errors.New("proforma_invoice_not_found")
	ErrOrderNotFound    = errors.New("purchase_order_not_found")
	ErrNotLinked        = errors.New("purchase_order_not_linked")
)
