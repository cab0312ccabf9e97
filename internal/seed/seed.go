// Package seed creates the data a fresh deployment needs to be usable.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/learnhub/internal/app/models"
	"github.com/yigit/learnhub/internal/config"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
)

// UserStore is the part of the user repository seeding needs.
type UserStore interface {
	Create(ctx context.Context, user *appModels.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

// PasswordHasher hashes the seeded password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// CreateDefaultAdmin creates the bootstrap admin described by cfg. It does
// nothing when no email or password is configured or the account exists.
func CreateDefaultAdmin(ctx context.Context, cfg config.SeedConfig, users UserStore, hasher PasswordHasher, lgr zerolog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		lgr.Debug().Msg("No default admin configured, skipping seed")
		return nil
	}

	exists, err := users.EmailExists(ctx, cfg.AdminEmail)
	if err != nil {
		return fmt.Errorf("failed to check default admin: %w", err)
	}
	if exists {
		lgr.Info().Str("email", cfg.AdminEmail).Msg("Default admin already exists")
		return nil
	}

	hashed, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: hashed,
		RoleType: appModels.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		// Another instance seeded it first.
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	lgr.Info().Int64("user_id", admin.ID).Str("email", admin.Email).Msg("Default admin created")
	return nil
}
