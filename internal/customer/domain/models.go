package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Customer struct {
	ID            snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CustomerName  string       `gorm:"not null;index" json:"customer_name"`
	ReferenceName *string      `json:"reference_name"`
	ContactNumber string       `gorm:"not null" json:"contact_number"`
	Email         string       `gorm:"not null" json:"email"`
	CreatedDate   time.Time    `gorm:"not null" json:"created_date"`
}
