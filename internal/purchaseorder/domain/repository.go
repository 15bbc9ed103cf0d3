package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	VendorName string
	Date       string
	Purpose    Purpose
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, po *PurchaseOrder) error
	Update(ctx context.Context, db *gorm.DB, po *PurchaseOrder) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PurchaseOrder, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*PurchaseOrder, error)
	// ListLinked returns every order that references a proforma invoice.
	ListLinked(ctx context.Context, db *gorm.DB) ([]*PurchaseOrder, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
