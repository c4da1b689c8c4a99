package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/miguelmartinez95/rest-api-project/internal/config"
	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

// SeedAdmin creates the bootstrap admin account from config. It is
// idempotent: an existing user with that name is left untouched.
func SeedAdmin(ctx context.Context, repo repositories.UserRepository, cfg *config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	exists, err := repo.ExistsByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if exists {
		utils.Logger.Info("Admin user already present; skipping seeding.")
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		// another instance seeded it first
		if errors.Is(err, utils.ErrConflict) {
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}
	utils.Logger.WithField("user_id", admin.ID).Info("Seeded admin user")
	return nil
}
