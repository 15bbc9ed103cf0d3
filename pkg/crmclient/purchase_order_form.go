package crmclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rutujak-bora/crm/pkg/lineitem"
)

// PurchaseOrderForm is the create and edit form for a purchase order.
// New orders start as stock_in_sale.
type PurchaseOrderForm struct {
	api *Client

	mu         sync.Mutex
	submitting bool
	id         string

	Number     string
	Date       string
	VendorName string
	Editor     *lineitem.Editor

	purpose  Purpose
	piID     string
	piNumber string
}

func (c *Client) NewPurchaseOrderForm() *PurchaseOrderForm {
	return &PurchaseOrderForm{
		api:     c,
		Editor:  lineitem.NewEditor(nil),
		purpose: PurposeStockInSale,
	}
}

func (c *Client) EditPurchaseOrderForm(ctx context.Context, id string) (*PurchaseOrderForm, error) {
	po, err := c.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	f := c.NewPurchaseOrderForm()
	f.id = po.ID
	f.Number = po.PurchaseOrderNumber
	f.Date = po.Date
	f.VendorName = po.VendorName
	f.Editor = lineitem.NewEditor(po.Products)
	if po.Purpose != "" {
		f.purpose = po.Purpose
	}
	f.piID = deref(po.ProformaInvoiceID)
	f.piNumber = deref(po.ProformaInvoiceNumber)
	return f, nil
}

func (f *PurchaseOrderForm) Purpose() Purpose {
	return f.purpose
}

// ProformaInvoice returns the selected PI id and number, empty when none.
func (f *PurchaseOrderForm) ProformaInvoice() (id, number string) {
	return f.piID, f.piNumber
}

// SetPurpose switches the order purpose. Leaving linked drops the PI, so
// going back to linked needs a fresh SelectProformaInvoice.
func (f *PurchaseOrderForm) SetPurpose(p Purpose) error {
	switch p {
	case PurposeStockInSale:
		f.piID, f.piNumber = "", ""
	case PurposeLinked:
	default:
		return ErrInvalidPurpose
	}
	f.purpose = p
	return nil
}

func (f *PurchaseOrderForm) SelectProformaInvoice(pi ProformaInvoice) {
	f.piID = pi.ID
	f.piNumber = pi.ProformaInvoiceNumber
}

func (f *PurchaseOrderForm) Validate() error {
	if f.purpose == PurposeLinked && strings.TrimSpace(f.piID) == "" {
		return ErrProformaRequired
	}
	if err := f.Editor.Validate(); err != nil {
		if errors.Is(err, lineitem.ErrNoValidProduct) {
			return ErrProductsRequired
		}
		return err
	}
	return nil
}

// Submit validates locally, then creates or updates the order. A Submit
// made while one is running is rejected.
func (f *PurchaseOrderForm) Submit(ctx context.Context) Result[PurchaseOrder] {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return rejected[PurchaseOrder](ErrSubmitInProgress)
	}
	f.submitting = true
	id := f.id
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if err := f.Validate(); err != nil {
		return rejected[PurchaseOrder](err)
	}

	in := purchaseOrderInput{
		PurchaseOrderNumber: strings.TrimSpace(f.Number),
		Date:                f.Date,
		VendorName:          strings.TrimSpace(f.VendorName),
		Purpose:             f.purpose,
		Products:            f.Editor.Items(),
	}
	if f.purpose == PurposeLinked {
		in.ProformaInvoiceID = optional(f.piID)
		in.ProformaInvoiceNumber = optional(f.piNumber)
	}

	var out PurchaseOrder
	var err error
	if id == "" {
		err = f.api.doJSON(ctx, http.MethodPost, "/purchase-orders", in, &out)
	} else {
		err = f.api.doJSON(ctx, http.MethodPut, "/purchase-orders/"+url.PathEscape(id), in, &out)
	}
	if err != nil {
		return failed[PurchaseOrder](err, RollbackKeepLocal)
	}
	f.mu.Lock()
	f.id = out.ID
	f.mu.Unlock()
	return succeeded(out)
}
