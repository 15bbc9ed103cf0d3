package domain

import (
	"context"
	"errors"

	"github.com/rutujak-bora/crm/pkg/lineitem"
)

type ListRequest struct {
	VendorName string
	Category   string
	Date       string
	Purpose    string
}

type PurchaseOrderInput struct {
	PurchaseOrderNumber   string          `json:"purchase_order_number"`
	Date                  string          `json:"date"`
	VendorName            string          `json:"vendor_name"`
	Purpose               string          `json:"purpose"`
	ProformaInvoiceID     *string         `json:"proforma_invoice_id"`
	ProformaInvoiceNumber *string         `json:"proforma_invoice_number"`
	Products              []lineitem.Item `json:"products"`
}

type Service interface {
	Create(context.Context, PurchaseOrderInput) (PurchaseOrder, error)
	List(context.Context, ListRequest) ([]PurchaseOrder, error)
	GetByID(ctx context.Context, id string) (PurchaseOrder, error)
	Update(ctx context.Context, id string, input PurchaseOrderInput) (PurchaseOrder, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidNumber    = errors.New("invalid_purchase_order_number")
	ErrInvalidVendor    = errors.New("invalid_vendor_name")
	ErrInvalidDate      = errors.New("invalid_date")
	ErrInvalidPurpose   = errors.New("invalid_purpose")
	ErrProformaRequired = errors.New("proforma_invoice_required")
	ErrProformaNotFound = errors.New("proforma_invoice_not_found")
	ErrNotFound         = errors.New("not_found")
)
