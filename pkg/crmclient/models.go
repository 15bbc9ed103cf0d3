package crmclient

import (
	"time"

	"github.com/rutujak-bora/crm/pkg/lineitem"
)

// IDs travel as decimal strings.

type Customer struct {
	ID            string    `json:"id"`
	CustomerName  string    `json:"customer_name"`
	ReferenceName *string   `json:"reference_name"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email"`
	CreatedDate   time.Time `json:"created_date"`
}

type CustomerInput struct {
	CustomerName  string  `json:"customer_name"`
	ReferenceName *string `json:"reference_name"`
	ContactNumber string  `json:"contact_number"`
	Email         string  `json:"email"`
}

type Lead struct {
	ID                    string          `json:"id"`
	CustomerID            string          `json:"customer_id"`
	CustomerName          string          `json:"customer_name"`
	ProformaInvoiceNumber *string         `json:"proforma_invoice_number"`
	Date                  string          `json:"date"`
	Products              []lineitem.Item `json:"products"`
	FollowUpDate          *string         `json:"follow_up_date"`
	Remark                *string         `json:"remark"`
	TenderDocument        *string         `json:"tender_document"`
	WorkingSheet          *string         `json:"working_sheet"`
	IsConverted           bool            `json:"is_converted"`
	CreatedDate           time.Time       `json:"created_date"`
	TotalAmount           float64         `json:"total_amount"`
}

type leadInput struct {
	CustomerID            string          `json:"customer_id"`
	CustomerName          string          `json:"customer_name"`
	ProformaInvoiceNumber *string         `json:"proforma_invoice_number"`
	Date                  string          `json:"date"`
	Products              []lineitem.Item `json:"products"`
	FollowUpDate          *string         `json:"follow_up_date"`
	Remark                *string         `json:"remark"`
}

type ProformaInvoice struct {
	ID                    string          `json:"id"`
	ProformaInvoiceNumber string          `json:"proforma_invoice_number"`
	CustomerID            string          `json:"customer_id"`
	CustomerName          string          `json:"customer_name"`
	Date                  string          `json:"date"`
	Products              []lineitem.Item `json:"products"`
	TotalAmount           float64         `json:"total_amount"`
	TenderDocument        *string         `json:"tender_document"`
	WorkingSheet          *string         `json:"working_sheet"`
	LeadID                string          `json:"lead_id"`
	CreatedDate           time.Time       `json:"created_date"`
}

type Purpose string

const (
	PurposeLinked      Purpose = "linked"
	PurposeStockInSale Purpose = "stock_in_sale"
)

type PurchaseOrder struct {
	ID                    string          `json:"id"`
	PurchaseOrderNumber   string          `json:"purchase_order_number"`
	Date                  string          `json:"date"`
	VendorName            string          `json:"vendor_name"`
	Purpose               Purpose         `json:"purpose"`
	ProformaInvoiceID     *string         `json:"proforma_invoice_id"`
	ProformaInvoiceNumber *string         `json:"proforma_invoice_number"`
	Products              []lineitem.Item `json:"products"`
	TotalAmount           float64         `json:"total_amount"`
	CreatedDate           time.Time       `json:"created_date"`
}

type purchaseOrderInput struct {
	PurchaseOrderNumber   string          `json:"purchase_order_number"`
	Date                  string          `json:"date"`
	VendorName            string          `json:"vendor_name"`
	Purpose               Purpose         `json:"purpose"`
	ProformaInvoiceID     *string         `json:"proforma_invoice_id"`
	ProformaInvoiceNumber *string         `json:"proforma_invoice_number"`
	Products              []lineitem.Item `json:"products"`
}

// MarginRow is one linked PI and PO pair on the margin sheet.
type MarginRow struct {
	ProformaInvoiceNumber string  `json:"proforma_invoice_number"`
	ProformaInvoiceID     string  `json:"proforma_invoice_id"`
	ProformaTotalAmount   float64 `json:"proforma_total_amount"`
	PurchaseOrderNumber   string  `json:"purchase_order_number"`
	PurchaseOrderID       string  `json:"purchase_order_id"`
	PurchaseOrderAmount   float64 `json:"purchase_order_amount"`
	RemainingAmount       float64 `json:"remaining_amount"`
	FreightAmount         float64 `json:"freight_amount"`
	MarginAmount          float64 `json:"margin_amount"`
}

type KPI struct {
	TotalCustomers        int64   `json:"total_customers"`
	ActiveLeads           int64   `json:"active_leads"`
	TotalProformaInvoices int64   `json:"total_proforma_invoices"`
	TotalPurchaseOrders   int64   `json:"total_purchase_orders"`
	MarginSummary         float64 `json:"margin_summary"`
}

type Bid struct {
	ID          string  `json:"id"`
	GemBidNo    string  `json:"gem_bid_no"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	EMDAmount   float64 `json:"emd_amount"`
	Quantity    float64 `json:"quantity"`
	Status      string  `json:"status"`
	Description *string `json:"description"`
}

// File is a document picked by the user, held in memory until uploaded.
type File struct {
	Name string
	Data []byte
}

func (f File) Size() int64 {
	return int64(len(f.Data))
}

// UploadResult is the server's answer to a document upload.
type UploadResult struct {
	Message     string `json:"message"`
	DocumentURL string `json:"document_url"`
	FileName    string `json:"filename"`
}
