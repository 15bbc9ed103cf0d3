package authorization

import (
	"context"
	"errors"
)

type Service interface {
	// Authorize checks that the user may perform action on object within namespace.
	Authorize(ctx context.Context, namespace, email, object, action string) error
	// GrantAdmin gives the user the admin role in namespace.
	GrantAdmin(ctx context.Context, namespace, email string) error
}

var (
	ErrInvalidActor     = errors.New("invalid_actor")
	ErrInvalidNamespace = errors.New("invalid_namespace")
	ErrInvalidObject    = errors.New("invalid_object")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrForbidden        = errors.New("forbidden")
)
