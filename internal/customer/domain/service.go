package domain

import (
	"context"
	"errors"
)

type ListCustomerRequest struct {
	Name string
}

type ListCustomerFilter struct {
	Name string
}

// CustomerInput is the body of both create and update.
type CustomerInput struct {
	CustomerName  string  `json:"customer_name"`
	ReferenceName *string `json:"reference_name"`
	ContactNumber string  `json:"contact_number"`
	Email         string  `json:"email"`
}

type Service interface {
	Create(context.Context, CustomerInput) (Customer, error)
	List(context.Context, ListCustomerRequest) ([]Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	// FindByName matches the whole name, ignoring case.
	FindByName(ctx context.Context, name string) (Customer, error)
	Update(ctx context.Context, id string, input CustomerInput) (Customer, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidContact = errors.New("invalid_contact_number")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
)
