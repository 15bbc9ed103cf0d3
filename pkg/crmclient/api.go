package crmclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) ListCustomers(ctx context.Context, name string) ([]Customer, error) {
	path := "/customers"
	if name = strings.TrimSpace(name); name != "" {
		path += "?" + url.Values{"name": {name}}.Encode()
	}
	var out []Customer
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) CreateCustomer(ctx context.Context, in CustomerInput) (Customer, error) {
	var out Customer
	err := c.doJSON(ctx, http.MethodPost, "/customers", in, &out)
	return out, err
}

func (c *Client) ListLeads(ctx context.Context) ([]Lead, error) {
	var out []Lead
	err := c.doJSON(ctx, http.MethodGet, "/leads", nil, &out)
	return out, err
}

func (c *Client) GetLead(ctx context.Context, id string) (Lead, error) {
	var out Lead
	err := c.doJSON(ctx, http.MethodGet, "/leads/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) DeleteLead(ctx context.Context, id string) Result[struct{}] {
	if err := c.doJSON(ctx, http.MethodDelete, "/leads/"+url.PathEscape(id), nil, nil); err != nil {
		return failed[struct{}](err, RollbackRefetch)
	}
	return succeeded(struct{}{})
}

// ConvertLead turns a lead into a proforma invoice. An empty number is
// rejected here and sends nothing. Callers refetch the lead on success.
func (c *Client) ConvertLead(ctx context.Context, id, proformaInvoiceNumber string) Result[ProformaInvoice] {
	number := strings.TrimSpace(proformaInvoiceNumber)
	if number == "" {
		return rejected[ProformaInvoice](ErrProformaNumberRequired)
	}

	var out ProformaInvoice
	body := map[string]string{"proforma_invoice_number": number}
	if err := c.doJSON(ctx, http.MethodPost, "/leads/"+url.PathEscape(id)+"/convert", body, &out); err != nil {
		return failed[ProformaInvoice](err, RollbackKeepLocal)
	}
	return succeeded(out)
}

// ConvertLoadedLead converts a lead the caller already holds. A lead that
// is already converted is rejected without a request.
func (c *Client) ConvertLoadedLead(ctx context.Context, lead Lead, proformaInvoiceNumber string) Result[ProformaInvoice] {
	if lead.IsConverted {
		return rejected[ProformaInvoice](ErrLeadAlreadyConverted)
	}
	return c.ConvertLead(ctx, lead.ID, proformaInvoiceNumber)
}

func (c *Client) ListProformaInvoices(ctx context.Context) ([]ProformaInvoice, error) {
	var out []ProformaInvoice
	err := c.doJSON(ctx, http.MethodGet, "/proforma-invoices", nil, &out)
	return out, err
}

// DownloadProformaInvoicePDF returns the rendered PDF bytes.
func (c *Client) DownloadProformaInvoicePDF(ctx context.Context, id string) ([]byte, error) {
	var out []byte
	err := c.doJSON(ctx, http.MethodGet, "/proforma-invoices/"+url.PathEscape(id)+"/pdf", nil, &out)
	return out, err
}

func (c *Client) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	var out []PurchaseOrder
	err := c.doJSON(ctx, http.MethodGet, "/purchase-orders", nil, &out)
	return out, err
}

func (c *Client) GetPurchaseOrder(ctx context.Context, id string) (PurchaseOrder, error) {
	var out PurchaseOrder
	err := c.doJSON(ctx, http.MethodGet, "/purchase-orders/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) ListMargins(ctx context.Context) ([]MarginRow, error) {
	var out []MarginRow
	err := c.doJSON(ctx, http.MethodGet, "/margin-calculator", nil, &out)
	return out, err
}

func (c *Client) UpdateFreight(ctx context.Context, proformaID, orderID string, amount float64) error {
	path := "/margin-calculator/" + url.PathEscape(proformaID) + "/" + url.PathEscape(orderID)
	return c.doJSON(ctx, http.MethodPut, path, map[string]float64{"freight_amount": amount}, nil)
}

func (c *Client) DashboardKPI(ctx context.Context) (KPI, error) {
	var out KPI
	err := c.doJSON(ctx, http.MethodGet, "/dashboard/kpi", nil, &out)
	return out, err
}

// ListBids filters by status when status is non-empty.
func (c *Client) ListBids(ctx context.Context, status string) ([]Bid, error) {
	path := "/bids"
	if status = strings.TrimSpace(status); status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}
	var out []Bid
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) UpdateBidStatus(ctx context.Context, id, status string) Result[struct{}] {
	path := "/bids/" + url.PathEscape(id) + "/status?" + url.Values{"status": {status}}.Encode()
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, nil); err != nil {
		return failed[struct{}](err, RollbackRefetch)
	}
	return succeeded(struct{}{})
}
