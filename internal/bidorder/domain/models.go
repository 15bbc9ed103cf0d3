package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Item is one SKU supplied against an awarded bid.
type Item struct {
	SKU             string  `json:"sku"`
	Vendor          string  `json:"vendor"`
	Price           float64 `json:"price"`
	Quantity        float64 `json:"quantity"`
	InvoiceValue    float64 `json:"invoice_value"`
	AdvancePaid     float64 `json:"advance_paid"`
	RemainingAmount float64 `json:"remaining_amount"`
	Date            string  `json:"date"`
	DeliveryDate    string  `json:"delivery_date"`
}

type Order struct {
	ID          snowflake.ID              `gorm:"primaryKey;autoIncrement:false" json:"id"`
	GemBidNo    string                    `gorm:"not null;index" json:"gem_bid_no"`
	Items       datatypes.JSONSlice[Item] `json:"items"`
	CreatedDate time.Time                 `gorm:"not null" json:"created_date"`

	// Single-SKU columns written by older releases.
	LegacySKU             *string  `gorm:"column:sku" json:"-"`
	LegacyVendor          *string  `gorm:"column:vendor" json:"-"`
	LegacyPrice           *float64 `gorm:"column:price" json:"-"`
	LegacyQuantity        *float64 `gorm:"column:quantity" json:"-"`
	LegacyInvoiceValue    *float64 `gorm:"column:invoice_value" json:"-"`
	LegacyAdvancePaid     *float64 `gorm:"column:advance_paid" json:"-"`
	LegacyRemainingAmount *float64 `gorm:"column:remaining_amount" json:"-"`
	LegacyDate            *string  `gorm:"column:date" json:"-"`
	LegacyDeliveryDate    *string  `gorm:"column:delivery_date" json:"-"`
}

func (Order) TableName() string { return "bid_orders" }

// Normalize presents a legacy single-SKU row as a one-item list.
func (o *Order) Normalize() {
	if len(o.Items) > 0 {
		return
	}
	item := Item{
		SKU:             stringOr(o.LegacySKU, "-"),
		Vendor:          stringOr(o.LegacyVendor, "-"),
		Price:           floatOr(o.LegacyPrice),
		Quantity:        floatOr(o.LegacyQuantity),
		InvoiceValue:    floatOr(o.LegacyInvoiceValue),
		AdvancePaid:     floatOr(o.LegacyAdvancePaid),
		RemainingAmount: floatOr(o.LegacyRemainingAmount),
		Date:            stringOr(o.LegacyDate, ""),
		DeliveryDate:    stringOr(o.LegacyDeliveryDate, ""),
	}
	o.Items = datatypes.NewJSONSlice([]Item{item})
}

func stringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func floatOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
