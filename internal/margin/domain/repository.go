package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Key struct {
	ProformaInvoiceID snowflake.ID
	PurchaseOrderID   snowflake.ID
}

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, margin *Margin) error
	// FreightByPair loads every stored freight keyed by pair.
	FreightByPair(ctx context.Context, db *gorm.DB) (map[Key]float64, error)
}
