package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/bidorder/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

// Update replaces the items and drops the legacy single-SKU columns.
func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"gem_bid_no":       order.GemBidNo,
			"items":            order.Items,
			"sku":              nil,
			"vendor":           nil,
			"price":            nil,
			"quantity":         nil,
			"invoice_value":    nil,
			"advance_paid":     nil,
			"remaining_amount": nil,
			"date":             nil,
			"delivery_date":    nil,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM bid_orders WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var orders []*domain.Order
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	orders[0].Normalize()
	return orders[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Order, error) {
	var orders []*domain.Order
	if err := db.WithContext(ctx).Order("created_date desc, id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Normalize()
	}
	return orders, nil
}
