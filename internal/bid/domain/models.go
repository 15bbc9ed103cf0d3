package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusShortlisted         Status = "Shortlisted"
	StatusParticipated        Status = "Participated"
	StatusTechnicalEvaluation Status = "Technical Evaluation"
	StatusRA                  Status = "RA"
	StatusRejected            Status = "Rejected"
	StatusBidAwarded          Status = "Bid Awarded"
	StatusSupplyOrderReceived Status = "Supply Order Received"
	StatusMaterialProcurement Status = "Material Procurement"
	StatusOrderComplete       Status = "Order Complete"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusShortlisted,
	StatusParticipated,
	StatusTechnicalEvaluation,
	StatusRA,
	StatusRejected,
	StatusBidAwarded,
	StatusSupplyOrderReceived,
	StatusMaterialProcurement,
	StatusOrderComplete,
}

// CompletedStatuses are the last four statuses, shown on the completed tab.
var CompletedStatuses = Statuses[len(Statuses)-4:]

func (s Status) Valid() bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s Status) Completed() bool {
	for _, status := range CompletedStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type StatusChange struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Document struct {
	FileName   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Bid struct {
	ID             snowflake.ID                      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	FirmName       *string                           `json:"Firm_name"`
	GemBidNo       string                            `gorm:"not null;index" json:"gem_bid_no"`
	BidDetails     *string                           `json:"Bid_details"`
	Description    *string                           `json:"description"`
	StartDate      string                            `gorm:"not null" json:"start_date"`
	EndDate        string                            `gorm:"not null;index" json:"end_date"`
	EMDAmount      float64                           `gorm:"column:emd_amount;not null" json:"emd_amount"`
	Quantity       float64                           `gorm:"not null" json:"quantity"`
	City           *string                           `json:"city"`
	Department     *string                           `json:"department"`
	ItemCategory   *string                           `json:"item_category"`
	EPBGPercentage *float64                          `gorm:"column:epbg_percentage" json:"epbg_percentage"`
	EPBGMonth      *int                              `gorm:"column:epbg_month" json:"epbg_month"`
	Status         Status                            `gorm:"type:varchar(32);not null;index" json:"status"`
	StatusHistory  datatypes.JSONSlice[StatusChange] `gorm:"not null" json:"status_history"`
	Documents      datatypes.JSONSlice[Document]     `gorm:"not null" json:"documents"`
	ReminderSent   bool                              `gorm:"not null;default:false" json:"reminder_sent"`
	ReminderSentAt *time.Time                        `json:"reminder_sent_at"`
	CreatedDate    time.Time                         `gorm:"not null" json:"created_date"`
}

// Details returns the text used in reminders.
func (b *Bid) Details() string {
	if b.BidDetails != nil && *b.BidDetails != "" {
		return *b.BidDetails
	}
	if b.Description != nil && *b.Description != "" {
		return *b.Description
	}
	return "No details available"
}

// Bid dates come from date or datetime-local inputs.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate accepts the layouts bid forms and spreadsheets produce.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
