package crmclient

import (
	"context"
	"errors"
)

// State is the outcome of a command.
type State int

const (
	StateOK State = iota
	// StateRejected means local validation failed and no request was sent.
	StateRejected
	StateFailed
	// StatePartial means the main write landed but a follow-up step did not.
	StatePartial
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	case StatePartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Rollback says what a page does with its local state after a failure.
type Rollback int

const (
	RollbackNone Rollback = iota
	// RollbackKeepLocal leaves the user's input in place so they can fix and resubmit.
	RollbackKeepLocal
	// RollbackRefetch discards optimistic changes by reloading from the server.
	RollbackRefetch
)

// Result is returned by every mutation helper.
type Result[T any] struct {
	State    State
	Value    T
	Err      error
	Rollback Rollback
}

func (r Result[T]) OK() bool {
	return r.State == StateOK
}

// Recovery holds the page hooks Apply may call.
type Recovery struct {
	// Refetch reloads the page's data from the server.
	Refetch func(context.Context) error
	// Notify shows err to the user.
	Notify func(err error)
}

// Apply runs the rollback the result asks for and returns the command error.
func (r Result[T]) Apply(ctx context.Context, rec Recovery) error {
	if r.Err == nil {
		return nil
	}
	if rec.Notify != nil {
		rec.Notify(r.Err)
	}
	if r.Rollback == RollbackRefetch && rec.Refetch != nil {
		if err := rec.Refetch(ctx); err != nil {
			return errors.Join(r.Err, err)
		}
	}
	return r.Err
}

func succeeded[T any](v T) Result[T] {
	return Result[T]{State: StateOK, Value: v}
}

func rejected[T any](err error) Result[T] {
	return Result[T]{State: StateRejected, Err: err, Rollback: RollbackKeepLocal}
}

func failed[T any](err error, rollback Rollback) Result[T] {
	return Result[T]{State: StateFailed, Err: err, Rollback: rollback}
}

// FormError is a local validation failure. Message is shown next to the field.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	ErrCustomerRequired       = &FormError{Field: "customer_id", Message: "Please select a customer"}
	ErrProductsRequired       = &FormError{Field: "products", Message: "Please add at least one product with quantity"}
	ErrProformaRequired       = &FormError{Field: "proforma_invoice_id", Message: "Please select a Proforma Invoice"}
	ErrProformaNumberRequired = &FormError{Field: "proforma_invoice_number", Message: "Proforma Invoice Number is required for conversion"}
	ErrInvalidPurpose         = &FormError{Field: "purpose", Message: "Purpose must be linked or stock_in_sale"}
	ErrLeadConverted          = &FormError{Field: "is_converted", Message: "Cannot edit converted lead"}
	ErrLeadAlreadyConverted   = &FormError{Field: "is_converted", Message: "Lead already converted"}
	ErrNotSaved               = errors.New("crmclient: record not saved yet")
	ErrSubmitInProgress       = errors.New("crmclient: submit already in progress")
)
