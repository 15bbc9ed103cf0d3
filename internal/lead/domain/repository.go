package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/pkg/attachment"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lead *Lead) error
	// UpdateEditable writes every field except documents and the conversion
	// flag, and only while the lead is unconverted. It reports whether a row
	// was written; MySQL counts an unchanged row as not written.
	UpdateEditable(ctx context.Context, db *gorm.DB, lead *Lead) (bool, error)
	SetDocument(ctx context.Context, db *gorm.DB, id snowflake.ID, slot attachment.Slot, url *string) error
	// MarkConverted flips the flag only if it is still false and reports whether it did.
	MarkConverted(ctx context.Context, db *gorm.DB, id snowflake.ID, number string) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Lead, error)
	List(ctx context.Context, db *gorm.DB, filter ListLeadFilter) ([]*Lead, error)
	CountActive(ctx context.Context, db *gorm.DB) (int64, error)
}
