package domain

import (
	"context"
	"errors"
)

type OrderInput struct {
	GemBidNo string `json:"gem_bid_no"`
	Items    []Item `json:"items"`
}

type Service interface {
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	Create(ctx context.Context, input OrderInput) (Order, error)
	Update(ctx context.Context, id string, input OrderInput) (Order, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidBidNo  = errors.New("invalid_gem_bid_no")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrNotFound      = errors.New("not_found")
)
