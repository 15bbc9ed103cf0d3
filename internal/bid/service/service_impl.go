package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/bid/domain"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/observability/metrics"
	"github.com/rutujak-bora/crm/internal/storage"
	"github.com/rutujak-bora/crm/pkg/attachment"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const filePrefix = "gem_"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Stores  *storage.Stores
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	files   *storage.Store
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("bid.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		files:   p.Stores.GemBid,
		metrics: p.Metrics,
	}
}

func (s *Service) Statuses() []domain.Status {
	return append([]domain.Status(nil), domain.Statuses...)
}

func (s *Service) List(ctx context.Context, status string) ([]domain.Bid, error) {
	var filter domain.ListFilter
	if status = strings.TrimSpace(status); status != "" {
		if !domain.Status(status).Valid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Statuses = []domain.Status{domain.Status(status)}
	}
	return s.list(ctx, filter)
}

// ListNew returns bids that are still in the bidding stages.
func (s *Service) ListNew(ctx context.Context) ([]domain.Bid, error) {
	return s.list(ctx, domain.ListFilter{ExcludeStatuses: domain.CompletedStatuses})
}

func (s *Service) ListCompleted(ctx context.Context) ([]domain.Bid, error) {
	return s.list(ctx, domain.ListFilter{Statuses: domain.CompletedStatuses})
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Bid, error) {
	bid, err := s.find(ctx, id)
	if err != nil {
		return domain.Bid{}, err
	}
	return *bid, nil
}

func (s *Service) Create(ctx context.Context, input domain.BidInput) (domain.Bid, error) {
	bid, err := build(input)
	if err != nil {
		return domain.Bid{}, err
	}
	if bid.Status == "" {
		bid.Status = domain.StatusShortlisted
	}

	now := s.clock.Now()
	bid.ID = s.genID.Generate()
	bid.CreatedDate = now
	bid.StatusHistory = datatypes.NewJSONSlice([]domain.StatusChange{{Status: bid.Status, Timestamp: now}})
	bid.Documents = datatypes.NewJSONSlice([]domain.Document{})

	if err := s.repo.Insert(ctx, s.db, &bid); err != nil {
		return domain.Bid{}, err
	}
	return bid, nil
}

// Update replaces the editable fields. History grows only when the status
// actually changes.
func (s *Service) Update(ctx context.Context, id string, input domain.BidInput) (domain.Bid, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return domain.Bid{}, err
	}
	updated, err := build(input)
	if err != nil {
		return domain.Bid{}, err
	}

	history := append([]domain.StatusChange(nil), existing.StatusHistory...)
	if updated.Status == "" {
		updated.Status = existing.Status
	} else if updated.Status != existing.Status {
		history = append(history, domain.StatusChange{Status: updated.Status, Timestamp: s.clock.Now()})
	}

	updated.ID = existing.ID
	updated.CreatedDate = existing.CreatedDate
	updated.StatusHistory = datatypes.NewJSONSlice(history)
	updated.Documents = existing.Documents
	updated.ReminderSent = existing.ReminderSent
	updated.ReminderSentAt = existing.ReminderSentAt

	if err := s.repo.Update(ctx, s.db, &updated); err != nil {
		return domain.Bid{}, err
	}
	return updated, nil
}

// PatchStatus always records a history entry, even for the current status.
func (s *Service) PatchStatus(ctx context.Context, id string, status string) (domain.Bid, error) {
	next := domain.Status(strings.TrimSpace(status))
	if !next.Valid() {
		return domain.Bid{}, domain.ErrInvalidStatus
	}
	bid, err := s.find(ctx, id)
	if err != nil {
		return domain.Bid{}, err
	}

	history := append([]domain.StatusChange(nil), bid.StatusHistory...)
	history = append(history, domain.StatusChange{Status: next, Timestamp: s.clock.Now()})
	if err := s.repo.UpdateStatus(ctx, s.db, bid.ID, next, history); err != nil {
		return domain.Bid{}, err
	}

	bid.Status = next
	bid.StatusHistory = datatypes.NewJSONSlice(history)
	return *bid, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	bid, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, bid.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	for _, doc := range bid.Documents {
		s.removeFile(doc.URL)
	}
	return nil
}

func (s *Service) UploadDocument(ctx context.Context, req domain.UploadDocumentRequest) (domain.UploadDocumentResponse, error) {
	bid, err := s.find(ctx, req.BidID)
	if err != nil {
		return domain.UploadDocumentResponse{}, err
	}
	if err := attachment.Validate(req.FileName, req.Size); err != nil {
		return domain.UploadDocumentResponse{}, err
	}

	name := storage.UniqueName(filePrefix, bid.ID.String(), attachment.Extension(req.FileName))
	if err := s.files.Save(name, req.Content); err != nil {
		return domain.UploadDocumentResponse{}, fmt.Errorf("save document: %w", err)
	}

	url := s.files.URL(name)
	documents := append([]domain.Document(nil), bid.Documents...)
	documents = append(documents, domain.Document{
		FileName:   strings.TrimSpace(req.FileName),
		URL:        url,
		UploadedAt: s.clock.Now(),
	})
	if err := s.repo.SetDocuments(ctx, s.db, bid.ID, documents); err != nil {
		_ = s.files.Remove(name)
		return domain.UploadDocumentResponse{}, err
	}
	s.metrics.RecordDocumentUpload(ctx, "gem_bid", "document")

	return domain.UploadDocumentResponse{
		Message:     "Document uploaded",
		DocumentURL: url,
		FileName:    req.FileName,
	}, nil
}

func (s *Service) DeleteDocument(ctx context.Context, id string, index int) error {
	bid, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(bid.Documents) {
		return domain.ErrDocumentNotFound
	}

	removed := bid.Documents[index]
	documents := make([]domain.Document, 0, len(bid.Documents)-1)
	documents = append(documents, bid.Documents[:index]...)
	documents = append(documents, bid.Documents[index+1:]...)
	if err := s.repo.SetDocuments(ctx, s.db, bid.ID, documents); err != nil {
		return err
	}
	s.removeFile(removed.URL)
	return nil
}

func (s *Service) list(ctx context.Context, filter domain.ListFilter) ([]domain.Bid, error) {
	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	bids := make([]domain.Bid, 0, len(items))
	for _, item := range items {
		if item != nil {
			bids = append(bids, *item)
		}
	}
	return bids, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Bid, error) {
	bidID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	bid, err := s.repo.FindByID(ctx, s.db, bidID)
	if err != nil {
		return nil, err
	}
	if bid == nil {
		return nil, domain.ErrNotFound
	}
	return bid, nil
}

func (s *Service) removeFile(url string) {
	if strings.TrimSpace(url) == "" {
		return
	}
	if err := s.files.Remove(storage.NameFromURL(url)); err != nil {
		s.log.Warn("remove document", zap.String("url", url), zap.Error(err))
	}
}

func build(input domain.BidInput) (domain.Bid, error) {
	number := strings.TrimSpace(input.GemBidNo)
	if number == "" {
		return domain.Bid{}, domain.ErrInvalidBidNo
	}
	start, err := parseDate(input.StartDate)
	if err != nil {
		return domain.Bid{}, err
	}
	end, err := parseDate(input.EndDate)
	if err != nil {
		return domain.Bid{}, err
	}

	status := domain.Status(strings.TrimSpace(input.Status))
	if status != "" && !status.Valid() {
		return domain.Bid{}, domain.ErrInvalidStatus
	}

	return domain.Bid{
		FirmName:       optionalString(input.FirmName),
		GemBidNo:       number,
		BidDetails:     optionalString(input.BidDetails),
		Description:    optionalString(input.Description),
		StartDate:      start,
		EndDate:        end,
		EMDAmount:      input.EMDAmount,
		Quantity:       input.Quantity,
		City:           optionalString(input.City),
		Department:     optionalString(input.Department),
		ItemCategory:   optionalString(input.ItemCategory),
		EPBGPercentage: input.EPBGPercentage,
		EPBGMonth:      input.EPBGMonth,
		Status:         status,
	}, nil
}

func parseDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if _, ok := domain.ParseDate(value); !ok {
		return "", domain.ErrInvalidDate
	}
	return value, nil
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

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
