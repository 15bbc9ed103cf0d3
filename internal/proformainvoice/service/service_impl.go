package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	leaddomain "github.com/rutujak-bora/crm/internal/lead/domain"
	"github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	"github.com/rutujak-bora/crm/internal/providers/pdf"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	LeadRepo leaddomain.Repository
	PDF      pdf.Provider
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	leadRepo leaddomain.Repository
	pdf      pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("proformainvoice.service"),
		repo:     p.Repo,
		leadRepo: p.LeadRepo,
		pdf:      p.PDF,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.ProformaInvoice, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		CustomerName: strings.TrimSpace(req.CustomerName),
	})
	if err != nil {
		return nil, err
	}

	invoices := make([]domain.ProformaInvoice, 0, len(items))
	for _, item := range items {
		if item == nil || !lineitem.HasCategory(item.Products, req.Category) {
			continue
		}
		invoices = append(invoices, *item)
	}
	return invoices, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.ProformaInvoice, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.ProformaInvoice{}, err
	}
	if err := s.syncFromLead(ctx, invoice); err != nil {
		return domain.ProformaInvoice{}, err
	}
	return *invoice, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (domain.ProformaInvoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return domain.ProformaInvoice{}, domain.ErrInvalidNumber
	}
	invoice, err := s.repo.FindByNumber(ctx, s.db, number)
	if err != nil {
		return domain.ProformaInvoice{}, err
	}
	if invoice == nil {
		return domain.ProformaInvoice{}, domain.ErrNotFound
	}
	return *invoice, nil
}

func (s *Service) UpdateProducts(ctx context.Context, id string, products []lineitem.Item) (domain.ProformaInvoice, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.ProformaInvoice{}, err
	}

	recomputed, total := lineitem.Recompute(products)
	if err := lineitem.Validate(recomputed); err != nil {
		return domain.ProformaInvoice{}, err
	}
	if err := s.repo.UpdateProducts(ctx, s.db, invoice.ID, recomputed, total); err != nil {
		return domain.ProformaInvoice{}, err
	}

	invoice.Products = datatypes.NewJSONSlice(recomputed)
	invoice.TotalAmount = total
	return *invoice, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, invoiceID)
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

func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, domain.ProformaInvoice, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ProformaInvoice{}, err
	}

	data := pdf.ProformaInvoiceData{
		Number:       invoice.ProformaInvoiceNumber,
		Date:         invoice.Date,
		CustomerName: invoice.CustomerName,
		Total:        invoice.TotalAmount,
	}
	for _, item := range invoice.Products {
		row := pdf.ProformaInvoiceItem{
			Product:  item.Product,
			Category: item.Category,
			Quantity: item.Quantity,
			Price:    item.Price,
			Amount:   item.Amount,
		}
		if item.PartNumber != nil {
			row.PartNumber = *item.PartNumber
		}
		data.Items = append(data.Items, row)
	}

	out, err := s.pdf.ProformaInvoice(ctx, data)
	if err != nil {
		return nil, domain.ProformaInvoice{}, err
	}
	return out, invoice, nil
}

// syncFromLead refreshes the snapshot from its lead. A deleted lead leaves
// the snapshot untouched.
func (s *Service) syncFromLead(ctx context.Context, invoice *domain.ProformaInvoice) error {
	if invoice.LeadID == 0 {
		return nil
	}
	lead, err := s.leadRepo.FindByID(ctx, s.db, invoice.LeadID)
	if err != nil {
		return err
	}
	if lead == nil {
		return nil
	}

	sync := domain.LeadSync{
		Products:       append([]lineitem.Item(nil), lead.Products...),
		TotalAmount:    lead.TotalAmount,
		TenderDocument: lead.TenderDocument,
		WorkingSheet:   lead.WorkingSheet,
		CustomerName:   lead.CustomerName,
	}
	if err := s.repo.ApplyLeadSync(ctx, s.db, invoice.ID, sync); err != nil {
		return err
	}

	invoice.Products = datatypes.NewJSONSlice(sync.Products)
	invoice.TotalAmount = sync.TotalAmount
	invoice.TenderDocument = sync.TenderDocument
	invoice.WorkingSheet = sync.WorkingSheet
	invoice.CustomerName = sync.CustomerName
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.ProformaInvoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
