package domain

import (
	"context"
	"errors"
	"io"

	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	"github.com/rutujak-bora/crm/pkg/attachment"
	"github.com/rutujak-bora/crm/pkg/lineitem"
)

type ListLeadRequest struct {
	CustomerName string
	Category     string
}

type ListLeadFilter struct {
	CustomerName string
}

// LeadInput is the body of create and update. Documents and the conversion
// flag are managed by their own operations and are ignored here.
type LeadInput struct {
	CustomerID            string          `json:"customer_id"`
	CustomerName          string          `json:"customer_name"`
	ProformaInvoiceNumber *string         `json:"proforma_invoice_number"`
	Date                  string          `json:"date"`
	Products              []lineitem.Item `json:"products"`
	FollowUpDate          *string         `json:"follow_up_date"`
	Remark                *string         `json:"remark"`
}

type UploadDocumentRequest struct {
	LeadID   string
	Slot     attachment.Slot
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
	Create(context.Context, LeadInput) (Lead, error)
	List(context.Context, ListLeadRequest) ([]Lead, error)
	GetByID(ctx context.Context, id string) (Lead, error)
	Update(ctx context.Context, id string, input LeadInput) (Lead, error)
	Delete(ctx context.Context, id string) error
	UploadDocument(ctx context.Context, req UploadDocumentRequest) (UploadDocumentResponse, error)
	DeleteDocument(ctx context.Context, id string, slot attachment.Slot) error
	Convert(ctx context.Context, id string, proformaInvoiceNumber string) (pidomain.ProformaInvoice, error)
	CountActive(ctx context.Context) (int64, error)
}

var (
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidCustomer       = errors.New("invalid_customer")
	ErrCustomerNotFound      = errors.New("customer_not_found")
	ErrInvalidDate           = errors.New("invalid_date")
	ErrNotFound              = errors.New("not_found")
	ErrConverted             = errors.New("lead_converted")
	ErrAlreadyConverted      = errors.New("lead_already_converted")
	ErrProformaNumberMissing = errors.New("proforma_invoice_number_required")
)
