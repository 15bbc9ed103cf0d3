// Package apierror maps domain errors to HTTP statuses and the free-text
// detail shown to users.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	authdomain "github.com/rutujak-bora/crm/internal/auth/domain"
	"github.com/rutujak-bora/crm/internal/authorization"
	biddomain "github.com/rutujak-bora/crm/internal/bid/domain"
	bidorderdomain "github.com/rutujak-bora/crm/internal/bidorder/domain"
	customerdomain "github.com/rutujak-bora/crm/internal/customer/domain"
	leaddomain "github.com/rutujak-bora/crm/internal/lead/domain"
	margindomain "github.com/rutujak-bora/crm/internal/margin/domain"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	podomain "github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"github.com/rutujak-bora/crm/internal/storage"
	"github.com/rutujak-bora/crm/pkg/attachment"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"gorm.io/gorm"
)

const (
	TypeValidation   = "validation_error"
	TypeUnauthorized = "unauthorized"
	TypeForbidden    = "forbidden"
	TypeNotFound     = "not_found"
	TypeConflict     = "conflict"
	TypeRateLimited  = "too_many_requests"
	TypeInternal     = "internal_error"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
)

// Error is a classified failure.
type Error struct {
	Status int
	Type   string
	Detail string
}

type entry struct {
	err    error
	status int
	detail string
}

// Entries are matched in order with errors.Is. Several domains share the
// text "not_found" but not the sentinel, so each gets its own line.
var entries = []entry{
	{authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{authdomain.ErrTokenMissing, http.StatusUnauthorized, "Not authenticated"},
	{authdomain.ErrTokenExpired, http.StatusUnauthorized, "Token expired"},
	{authdomain.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token"},
	{authdomain.ErrWrongNamespace, http.StatusUnauthorized, "Invalid token"},
	{authdomain.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many login attempts. Try again later."},
	{authdomain.ErrInvalidNamespace, http.StatusBadRequest, "Invalid system"},
	{authdomain.ErrInvalidUser, http.StatusBadRequest, "Email and password are required"},
	{ErrUnauthorized, http.StatusUnauthorized, "Not authenticated"},
	{authorization.ErrForbidden, http.StatusForbidden, "Not allowed"},
	{ErrForbidden, http.StatusForbidden, "Not allowed"},

	{customerdomain.ErrInvalidName, http.StatusBadRequest, "Customer name is required"},
	{customerdomain.ErrInvalidContact, http.StatusBadRequest, "Contact number is required"},
	{customerdomain.ErrInvalidEmail, http.StatusBadRequest, "A valid email is required"},
	{customerdomain.ErrInvalidID, http.StatusNotFound, "Customer not found"},
	{customerdomain.ErrNotFound, http.StatusNotFound, "Customer not found"},

	{leaddomain.ErrInvalidCustomer, http.StatusBadRequest, "Please select a customer"},
	{leaddomain.ErrCustomerNotFound, http.StatusBadRequest, "Customer not found"},
	{leaddomain.ErrInvalidDate, http.StatusBadRequest, "Dates must use YYYY-MM-DD"},
	{leaddomain.ErrConverted, http.StatusBadRequest, "Cannot edit converted lead"},
	{leaddomain.ErrAlreadyConverted, http.StatusBadRequest, "Lead already converted"},
	{leaddomain.ErrProformaNumberMissing, http.StatusBadRequest, "Proforma Invoice Number is required for conversion"},
	{leaddomain.ErrInvalidID, http.StatusNotFound, "Lead not found"},
	{leaddomain.ErrNotFound, http.StatusNotFound, "Lead not found"},

	{pidomain.ErrInvalidNumber, http.StatusBadRequest, "Proforma Invoice Number is required"},
	{pidomain.ErrInvalidID, http.StatusNotFound, "Proforma Invoice not found"},
	{pidomain.ErrNotFound, http.StatusNotFound, "Proforma Invoice not found"},

	{podomain.ErrInvalidNumber, http.StatusBadRequest, "PO number is required"},
	{podomain.ErrInvalidVendor, http.StatusBadRequest, "Vendor name is required"},
	{podomain.ErrInvalidDate, http.StatusBadRequest, "Date must use YYYY-MM-DD"},
	{podomain.ErrInvalidPurpose, http.StatusBadRequest, "Purpose must be linked or stock_in_sale"},
	{podomain.ErrProformaRequired, http.StatusBadRequest, "Please select a Proforma Invoice for a linked purchase order"},
	{podomain.ErrProformaNotFound, http.StatusBadRequest, "Proforma Invoice not found"},
	{podomain.ErrInvalidID, http.StatusNotFound, "Purchase Order not found"},
	{podomain.ErrNotFound, http.StatusNotFound, "Purchase Order not found"},

	{margindomain.ErrNegativeFreight, http.StatusBadRequest, "Freight amount cannot be negative"},
	{margindomain.ErrNotLinked, http.StatusBadRequest, "Purchase Order is not linked to this Proforma Invoice"},
	{margindomain.ErrProformaNotFound, http.StatusNotFound, "Proforma Invoice not found"},
	{margindomain.ErrOrderNotFound, http.StatusNotFound, "Purchase Order not found"},
	{margindomain.ErrInvalidID, http.StatusBadRequest, "Invalid id"},

	{biddomain.ErrInvalidBidNo, http.StatusBadRequest, "Gem Bid No is required"},
	{biddomain.ErrInvalidDate, http.StatusBadRequest, "Start and end dates are required"},
	{biddomain.ErrDocumentNotFound, http.StatusNotFound, "Document not found"},
	{biddomain.ErrInvalidID, http.StatusNotFound, "Bid not found"},
	{biddomain.ErrNotFound, http.StatusNotFound, "Bid not found"},

	{bidorderdomain.ErrInvalidBidNo, http.StatusBadRequest, "Gem Bid No is required"},
	{bidorderdomain.ErrInvalidAmount, http.StatusBadRequest, "Amounts cannot be negative"},
	{bidorderdomain.ErrInvalidID, http.StatusNotFound, "Order not found"},
	{bidorderdomain.ErrNotFound, http.StatusNotFound, "Order not found"},

	{lineitem.ErrNoValidProduct, http.StatusBadRequest, "Please add at least one valid product"},
	{attachment.ErrUnknownSlot, http.StatusNotFound, "Document not found"},
	{storage.ErrInvalidName, http.StatusNotFound, "File not found"},
	{storage.ErrNotFound, http.StatusNotFound, "File not found"},

	{ErrInvalidRequest, http.StatusBadRequest, "Invalid request"},
	{ErrNotFound, http.StatusNotFound, "Not found"},
	{ErrConflict, http.StatusConflict, "Already exists"},
	{gorm.ErrDuplicatedKey, http.StatusConflict, "Already exists"},
}

// Classify returns the status, type and detail for err. Unknown errors are
// internal and never leak their text.
func Classify(err error) Error {
	if err == nil {
		return Error{Status: http.StatusInternalServerError, Type: TypeInternal, Detail: "Internal server error"}
	}

	var vErr *attachment.ValidationError
	if errors.As(err, &vErr) {
		return Error{Status: http.StatusBadRequest, Type: TypeValidation, Detail: vErr.Message}
	}
	if errors.Is(err, biddomain.ErrInvalidStatus) {
		return Error{Status: http.StatusBadRequest, Type: TypeValidation, Detail: InvalidStatusDetail()}
	}

	for _, e := range entries {
		if errors.Is(err, e.err) {
			return Error{Status: e.status, Type: typeFor(e.status), Detail: e.detail}
		}
	}
	return Error{Status: http.StatusInternalServerError, Type: TypeInternal, Detail: "Internal server error"}
}

// Detail returns the user-facing text for err.
func Detail(err error) string {
	return Classify(err).Detail
}

// InvalidStatusDetail lists the accepted bid statuses.
func InvalidStatusDetail() string {
	names := make([]string, len(biddomain.Statuses))
	for i, s := range biddomain.Statuses {
		names[i] = string(s)
	}
	return fmt.Sprintf("Invalid status. Must be one of: %s", strings.Join(names, ", "))
}

func typeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return TypeValidation
	case http.StatusUnauthorized:
		return TypeUnauthorized
	case http.StatusForbidden:
		return TypeForbidden
	case http.StatusNotFound:
		return TypeNotFound
	case http.StatusConflict:
		return TypeConflict
	case http.StatusTooManyRequests:
		return TypeRateLimited
	default:
		return TypeInternal
	}
}
