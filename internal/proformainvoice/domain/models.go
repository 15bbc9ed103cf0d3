package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"gorm.io/datatypes"
)

// ProformaInvoice is the snapshot a lead is converted into.
type ProformaInvoice struct {
	ID                    snowflake.ID                        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProformaInvoiceNumber string                              `gorm:"not null;index" json:"proforma_invoice_number"`
	CustomerID            snowflake.ID                        `gorm:"not null" json:"customer_id"`
	CustomerName          string                              `gorm:"not null" json:"customer_name"`
	Date                  string                              `gorm:"not null" json:"date"`
	Products              datatypes.JSONSlice[lineitem.Item] `gorm:"not null" json:"products"`
	TotalAmount           float64                             `gorm:"not null" json:"total_amount"`
	TenderDocument        *string                             `json:"tender_document"`
	WorkingSheet          *string                             `json:"working_sheet"`
	CreatedDate           time.Time                           `gorm:"not null" json:"created_date"`
	LeadID                snowflake.ID                        `gorm:"not null;index" json:"lead_id"`
}

// LeadSync carries the fields copied from the originating lead on read.
type LeadSync struct {
	Products       []lineitem.Item
	TotalAmount    float64
	TenderDocument *string
	WorkingSheet   *string
	CustomerName   string
}
