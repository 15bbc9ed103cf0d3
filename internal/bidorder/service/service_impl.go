package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/bidorder/domain"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("bidorder.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		if item != nil {
			orders = append(orders, *item)
		}
	}
	return orders, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

func (s *Service) Create(ctx context.Context, input domain.OrderInput) (domain.Order, error) {
	order, err := build(input)
	if err != nil {
		return domain.Order{}, err
	}
	order.ID = s.genID.Generate()
	order.CreatedDate = s.clock.Now()

	if err := s.repo.Insert(ctx, s.db, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *Service) Update(ctx context.Context, id string, input domain.OrderInput) (domain.Order, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := build(input)
	if err != nil {
		return domain.Order{}, err
	}
	order.ID = existing.ID
	order.CreatedDate = existing.CreatedDate

	if err := s.repo.Update(ctx, s.db, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	orderID, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, orderID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// build trims the input and recomputes every remaining amount; whatever the
// client sent for it is ignored.
func build(input domain.OrderInput) (domain.Order, error) {
	number := strings.TrimSpace(input.GemBidNo)
	if number == "" {
		return domain.Order{}, domain.ErrInvalidBidNo
	}

	items := make([]domain.Item, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Price < 0 || in.Quantity < 0 || in.InvoiceValue < 0 || in.AdvancePaid < 0 {
			return domain.Order{}, domain.ErrInvalidAmount
		}
		item := in
		item.SKU = strings.TrimSpace(in.SKU)
		item.Vendor = strings.TrimSpace(in.Vendor)
		item.Date = strings.TrimSpace(in.Date)
		item.DeliveryDate = strings.TrimSpace(in.DeliveryDate)
		item.RemainingAmount = lineitem.Sub(in.InvoiceValue, in.AdvancePaid)
		items = append(items, item)
	}

	return domain.Order{
		GemBidNo: number,
		Items:    datatypes.NewJSONSlice(items),
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
