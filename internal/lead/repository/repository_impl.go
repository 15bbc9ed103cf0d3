package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/lead/domain"
	"github.com/rutujak-bora/crm/pkg/attachment"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, lead *domain.Lead) error {
	return db.WithContext(ctx).Create(lead).Error
}

func (r *repo) UpdateEditable(ctx context.Context, db *gorm.DB, lead *domain.Lead) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND is_converted = ?", lead.ID, false).
		Updates(map[string]any{
			"customer_id":             lead.CustomerID,
			"customer_name":           lead.CustomerName,
			"proforma_invoice_number": lead.ProformaInvoiceNumber,
			"date":                    lead.Date,
			"products":                lead.Products,
			"follow_up_date":          lead.FollowUpDate,
			"remark":                  lead.Remark,
			"total_amount":            lead.TotalAmount,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) SetDocument(ctx context.Context, db *gorm.DB, id snowflake.ID, slot attachment.Slot, url *string) error {
	return db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", id).
		Update(string(slot), url).Error
}

func (r *repo) MarkConverted(ctx context.Context, db *gorm.DB, id snowflake.ID, number string) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE leads SET is_converted = ?, proforma_invoice_number = ? WHERE id = ? AND is_converted = ?`,
		true, number, id, false,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM leads WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Lead, error) {
	var leads []*domain.Lead
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&leads).Error; err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return leads[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListLeadFilter) ([]*domain.Lead, error) {
	var leads []*domain.Lead
	stmt := db.WithContext(ctx).Model(&domain.Lead{})
	if filter.CustomerName != "" {
		stmt = stmt.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(filter.CustomerName)+"%")
	}
	if err := stmt.Order("created_date desc, id desc").Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Lead{}).Where("is_converted = ?", false).Count(&count).Error
	return count, err
}
