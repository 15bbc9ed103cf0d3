package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.ProformaInvoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) UpdateProducts(ctx context.Context, db *gorm.DB, id snowflake.ID, products []lineitem.Item, total float64) error {
	return db.WithContext(ctx).
		Model(&domain.ProformaInvoice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"products":     datatypes.NewJSONSlice(products),
			"total_amount": total,
		}).Error
}

func (r *repo) ApplyLeadSync(ctx context.Context, db *gorm.DB, id snowflake.ID, sync domain.LeadSync) error {
	return db.WithContext(ctx).
		Model(&domain.ProformaInvoice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"products":        datatypes.NewJSONSlice(sync.Products),
			"total_amount":    sync.TotalAmount,
			"tender_document": sync.TenderDocument,
			"working_sheet":   sync.WorkingSheet,
			"customer_name":   sync.CustomerName,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM proforma_invoices WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ProformaInvoice, error) {
	var invoices []*domain.ProformaInvoice
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return invoices[0], nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.ProformaInvoice, error) {
	var invoices []*domain.ProformaInvoice
	err := db.WithContext(ctx).
		Where("proforma_invoice_number = ?", number).
		Order("created_date asc, id asc").
		Limit(1).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return invoices[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.ProformaInvoice, error) {
	var invoices []*domain.ProformaInvoice
	stmt := db.WithContext(ctx).Model(&domain.ProformaInvoice{})
	if filter.CustomerName != "" {
		stmt = stmt.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(filter.CustomerName)+"%")
	}
	err := stmt.Order("created_date desc, id desc").Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.ProformaInvoice{}).Count(&count).Error
	return count, err
}
