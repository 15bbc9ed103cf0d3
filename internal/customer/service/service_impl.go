package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, input domain.CustomerInput) (domain.Customer, error) {
	customer, err := normalize(input)
	if err != nil {
		return domain.Customer{}, err
	}
	customer.ID = s.genID.Generate()
	customer.CreatedDate = s.clock.Now()

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}
	s.log.Debug("customer created", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) ([]domain.Customer, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListCustomerFilter{
		Name: strings.TrimSpace(req.Name),
	})
	if err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}
	return customers, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customerID, err := s.parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) FindByName(ctx context.Context, name string) (domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	item, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, input domain.CustomerInput) (domain.Customer, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	updated, err := normalize(input)
	if err != nil {
		return domain.Customer{}, err
	}
	updated.ID = existing.ID
	updated.CreatedDate = existing.CreatedDate

	if err := s.repo.Update(ctx, s.db, &updated); err != nil {
		return domain.Customer{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customerID, err := s.parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, customerID)
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

func normalize(input domain.CustomerInput) (domain.Customer, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	contact := strings.TrimSpace(input.ContactNumber)
	if contact == "" {
		return domain.Customer{}, domain.ErrInvalidContact
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	var reference *string
	if input.ReferenceName != nil {
		if ref := strings.TrimSpace(*input.ReferenceName); ref != "" {
			reference = &ref
		}
	}

	return domain.Customer{
		CustomerName:  name,
		ReferenceName: reference,
		ContactNumber: contact,
		Email:         email,
	}, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
