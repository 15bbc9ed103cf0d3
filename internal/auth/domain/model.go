// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Namespace separates the CRM users and tokens from the bid tracker's.
type Namespace string

const (
	NamespaceCRM    Namespace = "crm"
	NamespaceGemBid Namespace = "gem_bid"
)

func (n Namespace) Valid() bool {
	return n == NamespaceCRM || n == NamespaceGemBid
}

// DisplayName is the product name used in user-facing messages.
func (n Namespace) DisplayName() string {
	if n == NamespaceGemBid {
		return "GEM BID CRM"
	}
	return "CRM"
}

// User represents a login account within one namespace.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Namespace    Namespace    `gorm:"type:varchar(16);not null;uniqueIndex:ux_users_namespace_email"`
	Email        string       `gorm:"not null;uniqueIndex:ux_users_namespace_email"`
	Name         string       `gorm:"not null"`
	PasswordHash string       `gorm:"type:text;not null"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// UserView is the public part of a user.
type UserView struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
