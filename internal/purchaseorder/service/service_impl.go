package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/clock"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	"github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	InvoiceRepo pidomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	invoiceRepo pidomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("purchaseorder.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
	}
}

func (s *Service) Create(ctx context.Context, input domain.PurchaseOrderInput) (domain.PurchaseOrder, error) {
	po, err := s.build(ctx, input)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	po.ID = s.genID.Generate()
	po.CreatedDate = s.clock.Now()

	if err := s.repo.Insert(ctx, s.db, &po); err != nil {
		return domain.PurchaseOrder{}, err
	}
	return po, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.PurchaseOrder, error) {
	filter := domain.ListFilter{
		VendorName: strings.TrimSpace(req.VendorName),
		Date:       strings.TrimSpace(req.Date),
	}
	if purpose := strings.TrimSpace(req.Purpose); purpose != "" {
		filter.Purpose = domain.Purpose(purpose)
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.PurchaseOrder, 0, len(items))
	for _, item := range items {
		if item == nil || !lineitem.HasCategory(item.Products, req.Category) {
			continue
		}
		orders = append(orders, *item)
	}
	return orders, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	po, err := s.find(ctx, id)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	return *po, nil
}

func (s *Service) Update(ctx context.Context, id string, input domain.PurchaseOrderInput) (domain.PurchaseOrder, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}

	po, err := s.build(ctx, input)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	po.ID = existing.ID
	po.CreatedDate = existing.CreatedDate

	if err := s.repo.Update(ctx, s.db, &po); err != nil {
		return domain.PurchaseOrder{}, err
	}
	return po, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	poID, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, poID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.db)
}

func (s *Service) build(ctx context.Context, input domain.PurchaseOrderInput) (domain.PurchaseOrder, error) {
	number := strings.TrimSpace(input.PurchaseOrderNumber)
	if number == "" {
		return domain.PurchaseOrder{}, domain.ErrInvalidNumber
	}
	vendor := strings.TrimSpace(input.VendorName)
	if vendor == "" {
		return domain.PurchaseOrder{}, domain.ErrInvalidVendor
	}
	date := strings.TrimSpace(input.Date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return domain.PurchaseOrder{}, domain.ErrInvalidDate
	}
	purpose := domain.Purpose(strings.ToLower(strings.TrimSpace(input.Purpose)))
	if !purpose.Valid() {
		return domain.PurchaseOrder{}, domain.ErrInvalidPurpose
	}

	products := make([]lineitem.Item, len(input.Products))
	for i, item := range input.Products {
		item.PartNumber = nil
		products[i] = item
	}
	products, total := lineitem.Recompute(products)
	if err := lineitem.Validate(products); err != nil {
		return domain.PurchaseOrder{}, err
	}

	po := domain.PurchaseOrder{
		PurchaseOrderNumber: number,
		Date:                date,
		VendorName:          vendor,
		Purpose:             purpose,
		Products:            datatypes.NewJSONSlice(products),
		TotalAmount:         total,
	}

	if purpose == domain.PurposeLinked {
		invoice, err := s.linkedInvoice(ctx, input.ProformaInvoiceID)
		if err != nil {
			return domain.PurchaseOrder{}, err
		}
		invoiceID := invoice.ID
		invoiceNumber := invoice.ProformaInvoiceNumber
		po.ProformaInvoiceID = &invoiceID
		po.ProformaInvoiceNumber = &invoiceNumber
	}
	return po, nil
}

func (s *Service) linkedInvoice(ctx context.Context, raw *string) (*pidomain.ProformaInvoice, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, domain.ErrProformaRequired
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, domain.ErrProformaNotFound
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrProformaNotFound
	}
	return invoice, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	poID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	po, err := s.repo.FindByID(ctx, s.db, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return po, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
