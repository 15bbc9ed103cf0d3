package domain

import "context"

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// Verify checks a bearer token issued for namespace.
	Verify(ctx context.Context, namespace Namespace, rawToken string) (*UserView, error)
	// EnsureUser creates the user or resets its password and name.
	EnsureUser(ctx context.Context, req EnsureUserRequest) (*User, error)
}

type LoginRequest struct {
	Namespace Namespace
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type EnsureUserRequest struct {
	Namespace Namespace
	Email     string
	Password  string
	Name      string
}
