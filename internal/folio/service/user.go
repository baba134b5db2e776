package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/pkg/cryptox"
	"github.com/foliokit/folio/pkg/httpx"
	"github.com/foliokit/folio/pkg/slogx"
)

var ErrInvalidRole = errors.New("invalid role")

// UserService covers profile self-service and the admin user management
// surface. It also backs the auth middleware's identity lookups.
type UserService struct {
	Store store.Store
	Hash  cryptox.Params
}

// ProfileUpdate carries the self-service fields; nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// AdminUserUpdate carries the fields an admin may change on any account.
type AdminUserUpdate struct {
	Name  *string
	Email *string
	Role  *domain.Role
}

// LoadIdentity resolves a token subject to a live account. A deleted user
// fails here, which the middleware turns into a 401.
func (s *UserService) LoadIdentity(ctx context.Context, userID string) (httpx.Identity, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return httpx.Identity{}, err
	}
	return httpx.Identity{UserID: user.ID, Role: user.Role.String()}, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdateProfile applies a partial self-update. A password change re-hashes;
// existing sessions stay valid (tokens are stateless).
func (s *UserService) UpdateProfile(
	ctx context.Context,
	userID string,
	upd ProfileUpdate,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Password != nil {
		hash, err := cryptox.HashPassword(*upd.Password, s.Hash)
		if err != nil {
			log.Error("failed to hash new password", slog.Any("error", err))
			return domain.User{}, err
		}
		user.PasswordHash = hash
	}

	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("profile update attempted with taken email",
				slog.String("user_id", userID),
			)
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to update profile",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return domain.User{}, err
	}

	log.Info("profile updated", slog.String("user_id", userID))
	return user, nil
}

// ListUsers returns every account, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// UpdateUser applies an admin partial update to any account, including role
// changes. The next request re-reads the role from the store, so a demotion
// takes effect even against an older token.
func (s *UserService) UpdateUser(
	ctx context.Context,
	userID string,
	upd AdminUserUpdate,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return domain.User{}, ErrInvalidRole
		}
		user.Role = *upd.Role
	}

	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to update user",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return domain.User{}, err
	}

	log.Info("user updated by admin", slog.String("user_id", userID))
	return user, nil
}

// DeleteUser removes an account. Portfolios and projects go with it via the
// schema's ON DELETE CASCADE.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to delete user",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
		}
		return err
	}

	log.Info("user deleted", slog.String("user_id", userID))
	return nil
}
