package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Margin stores the freight for one proforma invoice and purchase order pair.
type Margin struct {
	ProformaInvoiceID snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	PurchaseOrderID   snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	FreightAmount     float64      `gorm:"not null;default:0"`
	UpdatedAt         time.Time    `gorm:"not null"`
}

// Row is one line of the margin view. Only the freight is persisted.
type Row struct {
	ProformaInvoiceNumber string       `json:"proforma_invoice_number"`
	ProformaInvoiceID     snowflake.ID `json:"proforma_invoice_id"`
	ProformaTotalAmount   float64      `json:"proforma_total_amount"`
	PurchaseOrderNumber   string       `json:"purchase_order_number"`
	PurchaseOrderID       snowflake.ID `json:"purchase_order_id"`
	PurchaseOrderAmount   float64      `json:"purchase_order_amount"`
	RemainingAmount       float64      `json:"remaining_amount"`
	FreightAmount         float64      `json:"freight_amount"`
	MarginAmount          float64      `json:"margin_amount"`
}
