package repository

import (
	"context"

	"github.com/rutujak-bora/crm/internal/margin/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, margin *domain.Margin) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "proforma_invoice_id"}, {Name: "purchase_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"freight_amount", "updated_at"}),
		}).
		Create(margin).Error
}

func (r *repo) FreightByPair(ctx context.Context, db *gorm.DB) (map[domain.Key]float64, error) {
	var margins []domain.Margin
	if err := db.WithContext(ctx).Find(&margins).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.Key]float64, len(margins))
	for _, m := range margins {
		out[domain.Key{ProformaInvoiceID: m.ProformaInvoiceID, PurchaseOrderID: m.PurchaseOrderID}] = m.FreightAmount
	}
	return out, nil
}
