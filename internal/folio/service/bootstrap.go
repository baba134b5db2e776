package service

import (
	"context"
	"log/slog"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/pkg/cryptox"
	"github.com/foliokit/folio/pkg/idx"
)

// BootstrapService seeds the very first admin from configuration. The invite
// workflow needs an existing admin to mint codes, so a fresh install gets one
// from the environment.
type BootstrapService struct {
	Store store.Store
	Hash  cryptox.Params
}

// SeedAdmin creates the initial admin when the users table is empty. It is a
// no-op once any user exists or when the credentials are not configured.
func (s *BootstrapService) SeedAdmin(
	ctx context.Context,
	log *slog.Logger,
	name string,
	email string,
	password string,
) error {
	if email == "" || password == "" {
		log.Debug("admin seed credentials not configured, skipping bootstrap")
		return nil
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		log.Debug("users exist, skipping admin bootstrap")
		return nil
	}

	passwordHash, err := cryptox.HashPassword(password, s.Hash)
	if err != nil {
		return err
	}

	if name == "" {
		name = "Administrator"
	}

	admin := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
	}

	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		return err
	}

	log.Info("seeded initial admin",
		slog.String("user_id", admin.ID),
		slog.String("email", admin.Email),
	)
	return nil
}
