package domain

import (
	"context"
	"errors"

	"github.com/rutujak-bora/crm/pkg/lineitem"
)

type ListRequest struct {
	CustomerName string
	Category     string
}

type ListFilter struct {
	CustomerName string
}

type Service interface {
	List(context.Context, ListRequest) ([]ProformaInvoice, error)
	// GetByID refreshes products, totals and documents from the originating
	// lead when it still exists.
	GetByID(ctx context.Context, id string) (ProformaInvoice, error)
	GetByNumber(ctx context.Context, number string) (ProformaInvoice, error)
	UpdateProducts(ctx context.Context, id string, products []lineitem.Item) (ProformaInvoice, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	RenderPDF(ctx context.Context, id string) ([]byte, ProformaInvoice, error)
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidNumber = errors.New("invalid_proforma_invoice_number")
	ErrNotFound      = errors.New("not_found")
)
