// Package dashboard aggregates the CRM landing-page figures.
package dashboard

import (
	"context"

	customerdomain "github.com/rutujak-bora/crm/internal/customer/domain"
	leaddomain "github.com/rutujak-bora/crm/internal/lead/domain"
	margindomain "github.com/rutujak-bora/crm/internal/margin/domain"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	podomain "github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(New),
)

type KPI struct {
	TotalCustomers        int64   `json:"total_customers"`
	ActiveLeads           int64   `json:"active_leads"`
	TotalProformaInvoices int64   `json:"total_proforma_invoices"`
	TotalPurchaseOrders   int64   `json:"total_purchase_orders"`
	MarginSummary         float64 `json:"margin_summary"`
}

type Params struct {
	fx.In

	Customers customerdomain.Service
	Leads     leaddomain.Service
	Invoices  pidomain.Service
	Orders    podomain.Service
	Margins   margindomain.Service
}

type Service struct {
	customers customerdomain.Service
	leads     leaddomain.Service
	invoices  pidomain.Service
	orders    podomain.Service
	margins   margindomain.Service
}

func New(p Params) *Service {
	return &Service{
		customers: p.Customers,
		leads:     p.Leads,
		invoices:  p.Invoices,
		orders:    p.Orders,
		margins:   p.Margins,
	}
}

func (s *Service) KPI(ctx context.Context) (KPI, error) {
	var kpi KPI
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		kpi.TotalCustomers, err = s.customers.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		kpi.ActiveLeads, err = s.leads.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		kpi.TotalProformaInvoices, err = s.invoices.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		kpi.TotalPurchaseOrders, err = s.orders.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		kpi.MarginSummary, err = s.margins.Summary(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return KPI{}, err
	}
	return kpi, nil
}
