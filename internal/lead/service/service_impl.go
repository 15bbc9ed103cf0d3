package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/clock"
	customerdomain "github.com/rutujak-bora/crm/internal/customer/domain"
	"github.com/rutujak-bora/crm/internal/lead/domain"
	"github.com/rutujak-bora/crm/internal/observability/metrics"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	"github.com/rutujak-bora/crm/internal/storage"
	"github.com/rutujak-bora/crm/pkg/attachment"
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
	Customers   customerdomain.Service
	Stores      *storage.Stores
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	invoiceRepo pidomain.Repository
	customers   customerdomain.Service
	files       *storage.Store
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("lead.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		customers:   p.Customers,
		files:       p.Stores.CRM,
		metrics:     p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, input domain.LeadInput) (domain.Lead, error) {
	lead, err := s.buildLead(ctx, input)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.ID = s.genID.Generate()
	lead.CreatedDate = s.clock.Now()

	if err := s.repo.Insert(ctx, s.db, &lead); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, req domain.ListLeadRequest) ([]domain.Lead, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListLeadFilter{
		CustomerName: strings.TrimSpace(req.CustomerName),
	})
	if err != nil {
		return nil, err
	}

	leads := make([]domain.Lead, 0, len(items))
	for _, item := range items {
		if item == nil || !lineitem.HasCategory(item.Products, req.Category) {
			continue
		}
		leads = append(leads, *item)
	}
	return leads, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	lead, err := s.find(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	return *lead, nil
}

func (s *Service) Update(ctx context.Context, id string, input domain.LeadInput) (domain.Lead, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if existing.IsConverted {
		return domain.Lead{}, domain.ErrConverted
	}

	updated, err := s.buildLead(ctx, input)
	if err != nil {
		return domain.Lead{}, err
	}
	updated.ID = existing.ID
	updated.CreatedDate = existing.CreatedDate
	updated.TenderDocument = existing.TenderDocument
	updated.WorkingSheet = existing.WorkingSheet

	written, err := s.repo.UpdateEditable(ctx, s.db, &updated)
	if err != nil {
		return domain.Lead{}, err
	}
	if !written {
		current, err := s.find(ctx, id)
		if err != nil {
			return domain.Lead{}, err
		}
		if current.IsConverted {
			return domain.Lead{}, domain.ErrConverted
		}
	}
	return updated, nil
}

// Delete removes the lead whatever its conversion state. A proforma invoice
// created from it keeps its snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	leadID, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, leadID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) UploadDocument(ctx context.Context, req domain.UploadDocumentRequest) (domain.UploadDocumentResponse, error) {
	lead, err := s.find(ctx, req.LeadID)
	if err != nil {
		return domain.UploadDocumentResponse{}, err
	}
	if err := attachment.Validate(req.FileName, req.Size); err != nil {
		return domain.UploadDocumentResponse{}, err
	}

	name := storage.UniqueName(req.Slot.FilePrefix(), lead.ID.String(), attachment.Extension(req.FileName))
	if err := s.files.Save(name, req.Content); err != nil {
		return domain.UploadDocumentResponse{}, fmt.Errorf("save document: %w", err)
	}

	url := s.files.URL(name)
	if err := s.repo.SetDocument(ctx, s.db, lead.ID, req.Slot, &url); err != nil {
		_ = s.files.Remove(name)
		return domain.UploadDocumentResponse{}, err
	}
	s.removeFile(documentOf(lead, req.Slot))
	s.metrics.RecordDocumentUpload(ctx, "crm", string(req.Slot))

	message := "Document uploaded successfully"
	if req.Slot == attachment.SlotWorkingSheet {
		message = "Working sheet uploaded successfully"
	}
	return domain.UploadDocumentResponse{
		Message:     message,
		DocumentURL: url,
		FileName:    req.FileName,
	}, nil
}

func (s *Service) DeleteDocument(ctx context.Context, id string, slot attachment.Slot) error {
	lead, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetDocument(ctx, s.db, lead.ID, slot, nil); err != nil {
		return err
	}
	s.removeFile(documentOf(lead, slot))
	return nil
}

func (s *Service) Convert(ctx context.Context, id string, proformaInvoiceNumber string) (pidomain.ProformaInvoice, error) {
	lead, err := s.find(ctx, id)
	if err != nil {
		return pidomain.ProformaInvoice{}, err
	}
	if lead.IsConverted {
		return pidomain.ProformaInvoice{}, domain.ErrAlreadyConverted
	}

	number := strings.TrimSpace(proformaInvoiceNumber)
	if number == "" && lead.ProformaInvoiceNumber != nil {
		number = strings.TrimSpace(*lead.ProformaInvoiceNumber)
	}
	if number == "" {
		return pidomain.ProformaInvoice{}, domain.ErrProformaNumberMissing
	}

	invoice := pidomain.ProformaInvoice{
		ID:                    s.genID.Generate(),
		ProformaInvoiceNumber: number,
		CustomerID:            lead.CustomerID,
		CustomerName:          lead.CustomerName,
		Date:                  lead.Date,
		Products:              datatypes.NewJSONSlice(append([]lineitem.Item(nil), lead.Products...)),
		TotalAmount:           lead.TotalAmount,
		TenderDocument:        lead.TenderDocument,
		WorkingSheet:          lead.WorkingSheet,
		CreatedDate:           s.clock.Now(),
		LeadID:                lead.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.invoiceRepo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}
		flipped, err := s.repo.MarkConverted(ctx, tx, lead.ID, number)
		if err != nil {
			return err
		}
		if !flipped {
			return domain.ErrAlreadyConverted
		}
		return nil
	})
	if err != nil {
		return pidomain.ProformaInvoice{}, err
	}

	s.metrics.RecordConversion(ctx)
	s.log.Info("lead converted",
		zap.String("lead_id", lead.ID.String()),
		zap.String("proforma_invoice_id", invoice.ID.String()),
	)
	return invoice, nil
}

func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx, s.db)
}

func (s *Service) buildLead(ctx context.Context, input domain.LeadInput) (domain.Lead, error) {
	if strings.TrimSpace(input.CustomerID) == "" {
		return domain.Lead{}, domain.ErrInvalidCustomer
	}
	customer, err := s.customers.GetByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, customerdomain.ErrNotFound) || errors.Is(err, customerdomain.ErrInvalidID) {
			return domain.Lead{}, domain.ErrCustomerNotFound
		}
		return domain.Lead{}, err
	}

	date := strings.TrimSpace(input.Date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return domain.Lead{}, domain.ErrInvalidDate
	}
	followUp, err := optionalDate(input.FollowUpDate)
	if err != nil {
		return domain.Lead{}, err
	}

	products, total := lineitem.Recompute(input.Products)
	if err := lineitem.Validate(products); err != nil {
		return domain.Lead{}, err
	}

	return domain.Lead{
		CustomerID:            customer.ID,
		CustomerName:          customer.CustomerName,
		ProformaInvoiceNumber: optionalString(input.ProformaInvoiceNumber),
		Date:                  date,
		Products:              datatypes.NewJSONSlice(products),
		FollowUpDate:          followUp,
		Remark:                optionalString(input.Remark),
		TotalAmount:           total,
	}, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Lead, error) {
	leadID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	lead, err := s.repo.FindByID(ctx, s.db, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	return lead, nil
}

func (s *Service) removeFile(url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := s.files.Remove(storage.NameFromURL(*url)); err != nil {
		s.log.Warn("remove document", zap.String("url", *url), zap.Error(err))
	}
}

func documentOf(lead *domain.Lead, slot attachment.Slot) *string {
	if slot == attachment.SlotWorkingSheet {
		return lead.WorkingSheet
	}
	return lead.TenderDocument
}

func optionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalDate(value *string) (*string, error) {
	trimmed := optionalString(value)
	if trimmed == nil {
		return nil, nil
	}
	if _, err := time.Parse(dateLayout, *trimmed); err != nil {
		return nil, domain.ErrInvalidDate
	}
	return trimmed, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
