package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Statuses        []Status
	ExcludeStatuses []Status
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bid *Bid) error
	Update(ctx context.Context, db *gorm.DB, bid *Bid) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, history []StatusChange) error
	SetDocuments(ctx context.Context, db *gorm.DB, id snowflake.ID, documents []Document) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bid, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Bid, error)
	// ListDueForReminder returns bids ending in [from, to) that have not been reminded.
	ListDueForReminder(ctx context.Context, db *gorm.DB, from, to string) ([]*Bid, error)
	// MarkReminderSent sets the flag only if it is still false and reports whether it did.
	MarkReminderSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)
}
