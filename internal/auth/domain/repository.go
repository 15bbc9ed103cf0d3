package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	FindByEmail(ctx context.Context, db *gorm.DB, namespace Namespace, email string) (*User, error)
	UpdatePassword(ctx context.Context, db *gorm.DB, user *User) error
}
