package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidNamespace   = errors.New("invalid namespace")
	ErrInvalidUser        = errors.New("invalid user")
	ErrTokenMissing       = errors.New("token missing")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrWrongNamespace     = errors.New("token issued for another namespace")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)
