package repository

import (
	"context"
	"strings"

	"github.com/rutujak-bora/crm/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, namespace domain.Namespace, email string) (*domain.User, error) {
	var users []*domain.User
	err := db.WithContext(ctx).
		Where("namespace = ? AND LOWER(email) = ?", namespace, strings.ToLower(email)).
		Limit(1).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

func (r *repo) UpdatePassword(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":          user.Name,
			"password_hash": user.PasswordHash,
			"updated_at":    user.UpdatedAt,
		}).Error
}
