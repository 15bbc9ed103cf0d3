package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *ProformaInvoice) error
	UpdateProducts(ctx context.Context, db *gorm.DB, id snowflake.ID, products []lineitem.Item, total float64) error
	ApplyLeadSync(ctx context.Context, db *gorm.DB, id snowflake.ID, sync LeadSync) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ProformaInvoice, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*ProformaInvoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*ProformaInvoice, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
