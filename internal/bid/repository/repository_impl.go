package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/bid/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, bid *domain.Bid) error {
	return db.WithContext(ctx).Create(bid).Error
}

// Update rewrites the editable columns. Documents and reminder state are
// owned by their own operations.
func (r *repo) Update(ctx context.Context, db *gorm.DB, bid *domain.Bid) error {
	return db.WithContext(ctx).
		Model(&domain.Bid{}).
		Where("id = ?", bid.ID).
		Updates(map[string]any{
			"firm_name":       bid.FirmName,
			"gem_bid_no":      bid.GemBidNo,
			"bid_details":     bid.BidDetails,
			"description":     bid.Description,
			"start_date":      bid.StartDate,
			"end_date":        bid.EndDate,
			"emd_amount":      bid.EMDAmount,
			"quantity":        bid.Quantity,
			"city":            bid.City,
			"department":      bid.Department,
			"item_category":   bid.ItemCategory,
			"epbg_percentage": bid.EPBGPercentage,
			"epbg_month":      bid.EPBGMonth,
			"status":          bid.Status,
			"status_history":  bid.StatusHistory,
		}).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, history []domain.StatusChange) error {
	return db.WithContext(ctx).
		Model(&domain.Bid{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"status_history": datatypes.NewJSONSlice(history),
		}).Error
}

func (r *repo) SetDocuments(ctx context.Context, db *gorm.DB, id snowflake.ID, documents []domain.Document) error {
	return db.WithContext(ctx).
		Model(&domain.Bid{}).
		Where("id = ?", id).
		Update("documents", datatypes.NewJSONSlice(documents)).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM bids WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Bid, error) {
	var bids []*domain.Bid
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&bids).Error; err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		return nil, nil
	}
	return bids[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	stmt := db.WithContext(ctx).Model(&domain.Bid{})
	if len(filter.Statuses) > 0 {
		stmt = stmt.Where("status IN ?", filter.Statuses)
	}
	if len(filter.ExcludeStatuses) > 0 {
		stmt = stmt.Where("status NOT IN ?", filter.ExcludeStatuses)
	}
	if err := stmt.Order("created_date desc, id desc").Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *repo) ListDueForReminder(ctx context.Context, db *gorm.DB, from, to string) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := db.WithContext(ctx).
		Where("end_date >= ? AND end_date < ?", from, to).
		Where("reminder_sent = ?", false).
		Order("end_date asc, id asc").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *repo) MarkReminderSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bids SET reminder_sent = ?, reminder_sent_at = ? WHERE id = ? AND reminder_sent = ?`,
		true, at, id, false,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
