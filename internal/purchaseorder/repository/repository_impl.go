package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, po *domain.PurchaseOrder) error {
	return db.WithContext(ctx).Create(po).Error
}

// Update rewrites the order and clears any legacy single-product columns.
func (r *repo) Update(ctx context.Context, db *gorm.DB, po *domain.PurchaseOrder) error {
	return db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("id = ?", po.ID).
		Updates(map[string]any{
			"purchase_order_number":   po.PurchaseOrderNumber,
			"date":                    po.Date,
			"vendor_name":             po.VendorName,
			"purpose":                 po.Purpose,
			"proforma_invoice_id":     po.ProformaInvoiceID,
			"proforma_invoice_number": po.ProformaInvoiceNumber,
			"products":                po.Products,
			"total_amount":            po.TotalAmount,
			"product":                 nil,
			"category":                nil,
			"quantity":                nil,
			"price":                   nil,
			"amount":                  nil,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM purchase_orders WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PurchaseOrder, error) {
	var orders []*domain.PurchaseOrder
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	orders[0].Normalize()
	return orders[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.PurchaseOrder, error) {
	stmt := db.WithContext(ctx).Model(&domain.PurchaseOrder{})
	if filter.VendorName != "" {
		stmt = stmt.Where("LOWER(vendor_name) LIKE ?", "%"+strings.ToLower(filter.VendorName)+"%")
	}
	if filter.Date != "" {
		stmt = stmt.Where("date = ?", filter.Date)
	}
	if filter.Purpose != "" {
		stmt = stmt.Where("purpose = ?", filter.Purpose)
	}
	return find(stmt)
}

func (r *repo) ListLinked(ctx context.Context, db *gorm.DB) ([]*domain.PurchaseOrder, error) {
	return find(db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("proforma_invoice_id IS NOT NULL"))
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.PurchaseOrder{}).Count(&count).Error
	return count, err
}

func find(stmt *gorm.DB) ([]*domain.PurchaseOrder, error) {
	var orders []*domain.PurchaseOrder
	if err := stmt.Order("created_date desc, id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, po := range orders {
		po.Normalize()
	}
	return orders, nil
}
