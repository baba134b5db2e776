package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/pkg/cryptox"
	"github.com/foliokit/folio/pkg/idx"
	"github.com/foliokit/folio/pkg/jwtx"
	"github.com/foliokit/folio/pkg/slogx"
)

var (
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ProvisionService owns account creation and login. Tokens are stateless:
// once issued they stay valid until expiry, logout is a client-side discard.
type ProvisionService struct {
	Store    store.Store
	Signer   jwtx.Signer
	Hash     cryptox.Params
	Issuer   string
	TokenTTL time.Duration
}

// Register creates a regular user account and issues a session token.
func (s *ProvisionService) Register(
	ctx context.Context,
	name string,
	email string,
	password string,
) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	user, err := s.createUser(ctx, s.Store, name, email, password, domain.RoleUser)
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		log.Error("failed to issue token after registration",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return domain.User{}, "", err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)
	return user, token, nil
}

// Login verifies credentials and issues a fresh session token.
func (s *ProvisionService) Login(
	ctx context.Context,
	email string,
	password string,
) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login attempt for unknown email")
			return domain.User{}, "", ErrInvalidCredentials
		}
		log.Error("failed to fetch user for login", slog.Any("error", err))
		return domain.User{}, "", err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login attempt with wrong password",
			slog.String("user_id", user.ID),
		)
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		log.Error("failed to issue token on login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return domain.User{}, "", err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// CreateAdminDirect provisions an admin account without an invite. The HTTP
// layer guards this behind an existing admin session.
func (s *ProvisionService) CreateAdminDirect(
	ctx context.Context,
	name string,
	email string,
	password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.createUser(ctx, s.Store, name, email, password, domain.RoleAdmin)
	if err != nil {
		return domain.User{}, err
	}

	log.Info("admin created directly", slog.String("user_id", user.ID))
	return user, nil
}

// createUser hashes the password and inserts the row. The email UNIQUE
// constraint is the duplicate check; there is no read-before-write window.
func (s *ProvisionService) createUser(
	ctx context.Context,
	st store.Store,
	name string,
	email string,
	password string,
	role domain.Role,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	passwordHash, err := cryptox.HashPassword(password, s.Hash)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := st.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("registration attempted with taken email")
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	return user, nil
}

func (s *ProvisionService) issueToken(user domain.User) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	claims := jwtx.NewSessionClaims(user.ID, user.Role.String(), s.Issuer, ttl, time.Now().UTC())
	return s.Signer.Sign(claims)
}
