package config

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/anandwan/awaas-backend/internal/store/admins"
)

// MinAdminPasswordLength matches the min=8 binding on admin password requests.
const MinAdminPasswordLength = 8

var ErrWeakAdminPassword = errors.New("ADMIN_PASSWORD must be set to at least 8 characters outside development")

// AdminSeeder is the part of the admins repository the seed needs.
type AdminSeeder interface {
	GetByEmail(ctx context.Context, email string) (*admins.Admin, error)
	Create(ctx context.Context, admin *admins.Admin) (*admins.Admin, error)
}

// CreateDefaultAdmin seeds the configured admin account when it does not exist yet.
// It reports whether an account was created. Outside development a password
// shorter than MinAdminPasswordLength is refused.
func CreateDefaultAdmin(ctx context.Context, cfg *Config, repo AdminSeeder) (bool, error) {
	existing, err := repo.GetByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		return false, fmt.Errorf("failed to check existing admin: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	if !cfg.IsDevelopment() && len(cfg.AdminPassword) < MinAdminPasswordLength {
		return false, ErrWeakAdminPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = repo.Create(ctx, &admins.Admin{
		Name:         "Awaas Admin",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	return true, nil
}
