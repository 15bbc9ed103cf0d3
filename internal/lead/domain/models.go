package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"gorm.io/datatypes"
)

type Lead struct {
	ID                    snowflake.ID                        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CustomerID            snowflake.ID                        `gorm:"not null;index" json:"customer_id"`
	CustomerName          string                              `gorm:"not null" json:"customer_name"`
	ProformaInvoiceNumber *string                             `json:"proforma_invoice_number"`
	Date                  string                              `gorm:"not null" json:"date"`
	Products              datatypes.JSONSlice[lineitem.Item] `gorm:"not null" json:"products"`
	FollowUpDate          *string                             `json:"follow_up_date"`
	Remark                *string                             `json:"remark"`
	TenderDocument        *string                             `json:"tender_document"`
	WorkingSheet          *string                             `json:"working_sheet"`
	IsConverted           bool                                `gorm:"not null;default:false;index" json:"is_converted"`
	CreatedDate           time.Time                           `gorm:"not null" json:"created_date"`
	TotalAmount           float64                             `gorm:"not null" json:"total_amount"`
}
