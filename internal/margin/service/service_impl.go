package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/margin/domain"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	podomain "github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Repo        domain.Repository
	InvoiceRepo pidomain.Repository
	OrderRepo   podomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	repo        domain.Repository
	invoiceRepo pidomain.Repository
	orderRepo   podomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("margin.service"),
		clock:       p.Clock,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		orderRepo:   p.OrderRepo,
	}
}

type linkedInvoice struct {
	invoice *pidomain.ProformaInvoice
	orders  []*podomain.PurchaseOrder
}

// linked returns invoices in list order, each with its orders, skipping
// invoices that have none.
func (s *Service) linked(ctx context.Context) ([]linkedInvoice, error) {
	invoices, err := s.invoiceRepo.List(ctx, s.db, pidomain.ListFilter{})
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListLinked(ctx, s.db)
	if err != nil {
		return nil, err
	}

	byInvoice := make(map[snowflake.ID][]*podomain.PurchaseOrder)
	for _, po := range orders {
		if po.ProformaInvoiceID == nil {
			continue
		}
		byInvoice[*po.ProformaInvoiceID] = append(byInvoice[*po.ProformaInvoiceID], po)
	}

	out := make([]linkedInvoice, 0, len(byInvoice))
	for _, invoice := range invoices {
		pos := byInvoice[invoice.ID]
		if len(pos) == 0 {
			continue
		}
		out = append(out, linkedInvoice{invoice: invoice, orders: pos})
	}
	return out, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Row, error) {
	groups, err := s.linked(ctx)
	if err != nil {
		return nil, err
	}
	freights, err := s.repo.FreightByPair(ctx, s.db)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Row, 0)
	for _, group := range groups {
		for _, po := range group.orders {
			freight := freights[domain.Key{ProformaInvoiceID: group.invoice.ID, PurchaseOrderID: po.ID}]
			remaining := lineitem.Sub(group.invoice.TotalAmount, po.TotalAmount)
			rows = append(rows, domain.Row{
				ProformaInvoiceNumber: group.invoice.ProformaInvoiceNumber,
				ProformaInvoiceID:     group.invoice.ID,
				ProformaTotalAmount:   group.invoice.TotalAmount,
				PurchaseOrderNumber:   po.PurchaseOrderNumber,
				PurchaseOrderID:       po.ID,
				PurchaseOrderAmount:   po.TotalAmount,
				RemainingAmount:       remaining,
				FreightAmount:         freight,
				MarginAmount:          lineitem.Sub(remaining, freight),
			})
		}
	}
	return rows, nil
}

func (s *Service) UpdateFreight(ctx context.Context, req domain.UpdateFreightRequest) error {
	invoiceID, err := parseID(req.ProformaInvoiceID)
	if err != nil {
		return err
	}
	orderID, err := parseID(req.PurchaseOrderID)
	if err != nil {
		return err
	}
	if req.FreightAmount < 0 {
		return domain.ErrNegativeFreight
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return domain.ErrProformaNotFound
	}
	po, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return err
	}
	if po == nil {
		return domain.ErrOrderNotFound
	}
	if po.ProformaInvoiceID == nil || *po.ProformaInvoiceID != invoice.ID {
		return domain.ErrNotLinked
	}

	return s.repo.Upsert(ctx, s.db, &domain.Margin{
		ProformaInvoiceID: invoice.ID,
		PurchaseOrderID:   po.ID,
		FreightAmount:     req.FreightAmount,
		UpdatedAt:         s.clock.Now(),
	})
}

func (s *Service) Summary(ctx context.Context) (float64, error) {
	groups, err := s.linked(ctx)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, group := range groups {
		remaining := decimal.NewFromFloat(group.invoice.TotalAmount)
		for _, po := range group.orders {
			remaining = remaining.Sub(decimal.NewFromFloat(po.TotalAmount))
		}
		total = total.Add(remaining)
	}
	return lineitem.Round2(total), nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
