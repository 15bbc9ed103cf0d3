package dashboard

import (
	"context"
	"errors"
	"testing"

	customerdomain "github.com/rutujak-bora/crm/internal/customer/domain"
	leaddomain "github.com/rutujak-bora/crm/internal/lead/domain"
	margindomain "github.com/rutujak-bora/crm/internal/margin/domain"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	podomain "github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customers struct{ customerdomain.Service }

func (customers) Count(context.Context) (int64, error) { return 12, nil }

type leads struct{ leaddomain.Service }

func (leads) CountActive(context.Context) (int64, error) { return 5, nil }

type invoices struct{ pidomain.Service }

func (invoices) Count(context.Context) (int64, error) { return 3, nil }

type orders struct {
	podomain.Service
	err error
}

func (o orders) Count(context.Context) (int64, error) { return 4, o.err }

type margins struct{ margindomain.Service }

func (margins) Summary(context.Context) (float64, error) { return 3299.55, nil }

func TestKPI(t *testing.T) {
	svc := New(Params{
		Customers: customers{},
		Leads:     leads{},
		Invoices:  invoices{},
		Orders:    orders{},
		Margins:   margins{},
	})

	kpi, err := svc.KPI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KPI{
		TotalCustomers:        12,
		ActiveLeads:           5,
		TotalProformaInvoices: 3,
		TotalPurchaseOrders:   4,
		MarginSummary:         3299.55,
	}, kpi)
}

func TestKPIPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := New(Params{
		Customers: customers{},
		Leads:     leads{},
		Invoices:  invoices{},
		Orders:    orders{err: boom},
		Margins:   margins{},
	})

	_, err := svc.KPI(context.Background())
	assert.ErrorIs(t, err, boom)
}
