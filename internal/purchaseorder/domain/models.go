package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"gorm.io/datatypes"
)

type Purpose string

const (
	PurposeLinked      Purpose = "linked"
	PurposeStockInSale Purpose = "stock_in_sale"
)

func (p Purpose) Valid() bool {
	return p == PurposeLinked || p == PurposeStockInSale
}

type PurchaseOrder struct {
	ID                    snowflake.ID                        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	PurchaseOrderNumber   string                              `gorm:"not null;index" json:"purchase_order_number"`
	Date                  string                              `gorm:"not null;index" json:"date"`
	VendorName            string                              `gorm:"not null" json:"vendor_name"`
	Purpose               Purpose                             `gorm:"type:varchar(32);not null" json:"purpose"`
	ProformaInvoiceID     *snowflake.ID                       `gorm:"index" json:"proforma_invoice_id"`
	ProformaInvoiceNumber *string                             `json:"proforma_invoice_number"`
	Products              datatypes.JSONSlice[lineitem.Item] `json:"products"`
	TotalAmount           float64                             `gorm:"not null" json:"total_amount"`
	CreatedDate           time.Time                           `gorm:"not null" json:"created_date"`

	// Single-product columns written by older releases.
	LegacyProduct  *string  `gorm:"column:product" json:"-"`
	LegacyCategory *string  `gorm:"column:category" json:"-"`
	LegacyQuantity *float64 `gorm:"column:quantity" json:"-"`
	LegacyPrice    *float64 `gorm:"column:price" json:"-"`
	LegacyAmount   *float64 `gorm:"column:amount" json:"-"`
}

// Normalize presents a legacy single-product row as a one-row products list.
func (po *PurchaseOrder) Normalize() {
	if len(po.Products) > 0 {
		return
	}
	if po.LegacyProduct == nil || *po.LegacyProduct == "" {
		po.Products = datatypes.NewJSONSlice([]lineitem.Item{})
		po.TotalAmount = 0
		return
	}

	item := lineitem.Item{Product: *po.LegacyProduct}
	if po.LegacyCategory != nil {
		item.Category = *po.LegacyCategory
	}
	if po.LegacyQuantity != nil {
		item.Quantity = *po.LegacyQuantity
	}
	if po.LegacyPrice != nil {
		item.Price = *po.LegacyPrice
	}
	if po.LegacyAmount != nil {
		item.Amount = *po.LegacyAmount
	}
	po.Products = datatypes.NewJSONSlice([]lineitem.Item{item})
	po.TotalAmount = item.Amount
}
