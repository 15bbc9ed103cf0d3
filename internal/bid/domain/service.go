package domain

import (
	"context"
	"errors"
	"io"
)

type BidInput struct {
	FirmName       *string  `json:"Firm_name"`
	GemBidNo       string   `json:"gem_bid_no"`
	BidDetails     *string  `json:"Bid_details"`
	Description    *string  `json:"description"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	EMDAmount      float64  `json:"emd_amount"`
	Quantity       float64  `json:"quantity"`
	City           *string  `json:"city"`
	Department     *string  `json:"department"`
	ItemCategory   *string  `json:"item_category"`
	EPBGPercentage *float64 `json:"epbg_percentage"`
	EPBGMonth      *int     `json:"epbg_month"`
	Status         string   `json:"status"`
}

type UploadDocumentRequest struct {
	BidID    string
	FileName string
	Size     int64
	Content  io.Reader
}

type UploadDocumentResponse struct {
	Message     string `json:"message"`
	DocumentURL string `json:"document_url"`
	FileName    string `json:"filename"`
}

type Service interface {
	List(ctx context.Context, status string) ([]Bid, error)
	ListNew(ctx context.Context) ([]Bid, error)
	ListCompleted(ctx context.Context) ([]Bid, error)
	GetByID(ctx context.Context, id string) (Bid, error)
	Create(ctx context.Context, input BidInput) (Bid, error)
	Update(ctx context.Context, id string, input BidInput) (Bid, error)
	PatchStatus(ctx context.Context, id string, status string) (Bid, error)
	Delete(ctx context.Context, id string) error
	UploadDocument(ctx context.Context, req UploadDocumentRequest) (UploadDocumentResponse, error)
	DeleteDocument(ctx context.Context, id string, index int) error
	Statuses() []Status
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidBidNo     = errors.New("invalid_gem_bid_no")
	ErrInvalidDate      = errors.New("invalid_date")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrNotFound         = errors.New("not_found")
	ErrDocumentNotFound = errors.New("document_not_found")
)
