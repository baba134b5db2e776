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
	"github.com/foliokit/folio/pkg/slogx"
)

// ErrInviteInvalid covers unknown, already-used and expired codes alike so
// the redeem endpoint can't be used to probe the ledger.
var ErrInviteInvalid = errors.New("invite code is invalid or expired")

const DefaultInviteTTL = 24 * time.Hour

// InviteService is the admin provisioning ledger: admins mint single-use
// codes, holders redeem them for admin accounts.
type InviteService struct {
	Store      store.Store
	Hash       cryptox.Params
	DefaultTTL time.Duration
}

// InviteDetail is an invite with issuer/redeemer resolved for display.
type InviteDetail struct {
	domain.InviteCode
	CreatedByName  string
	CreatedByEmail string
	UsedByName     string
	UsedByEmail    string
}

// Mint generates a fresh invite code. ttl <= 0 means the configured default.
func (s *InviteService) Mint(
	ctx context.Context,
	issuerID string,
	ttl time.Duration,
) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	if ttl <= 0 {
		ttl = s.DefaultTTL
	}
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}

	code, err := cryptox.GenerateInviteCode()
	if err != nil {
		log.Error("failed to generate invite code", slog.Any("error", err))
		return domain.InviteCode{}, err
	}

	invite := domain.InviteCode{
		ID:        idx.New().String(),
		Code:      code,
		CreatedBy: issuerID,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}

	if err := s.Store.Invites().CreateInvite(ctx, invite); err != nil {
		log.Error("failed to store invite",
			slog.String("invite_id", invite.ID),
			slog.Any("error", err),
		)
		return domain.InviteCode{}, err
	}

	log.Info("invite minted",
		slog.String("invite_id", invite.ID),
		slog.String("created_by", issuerID),
		slog.Time("expires_at", invite.ExpiresAt),
	)
	return invite, nil
}

// Redeem turns a valid invite code into an admin account. The user insert
// and the invite consumption happen in one transaction; the consumption is a
// single conditional update, so two concurrent redemptions of the same code
// yield exactly one admin.
func (s *InviteService) Redeem(
	ctx context.Context,
	code string,
	name string,
	email string,
	password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if code == "" {
		return domain.User{}, ErrInviteInvalid
	}

	// Cheap ledger check before the expensive hash, so garbage codes don't
	// cost a full argon2 run. Not authoritative: the conditional update
	// inside the transaction still decides races.
	invite, err := s.Store.Invites().GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite redemption attempted with unknown code")
			return domain.User{}, ErrInviteInvalid
		}
		log.Error("failed to look up invite", slog.Any("error", err))
		return domain.User{}, err
	}
	if !invite.Redeemable(time.Now().UTC()) {
		log.Warn("invite redemption attempted with invalid or expired code")
		return domain.User{}, ErrInviteInvalid
	}

	passwordHash, err := cryptox.HashPassword(password, s.Hash)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	newUser := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, newUser); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				log.Warn("invite redemption attempted with taken email")
				return ErrEmailTaken
			}
			log.Error("failed to create admin user", slog.Any("error", err))
			return err
		}

		if err := tx.Invites().ConsumeInvite(ctx, code, newUser.ID, time.Now().UTC()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("invite redemption attempted with invalid or expired code")
				return ErrInviteInvalid
			}
			log.Error("failed to consume invite", slog.Any("error", err))
			return err
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("admin registered via invite",
		slog.String("user_id", newUser.ID),
	)
	return newUser, nil
}

// List returns the full ledger, newest first, with issuer and redeemer
// identities resolved where the users still exist.
func (s *InviteService) List(ctx context.Context) ([]InviteDetail, error) {
	invites, err := s.Store.Invites().ListInvites(ctx)
	if err != nil {
		return nil, err
	}

	// Small table; resolve users one by one with a cache.
	users := map[string]domain.User{}
	resolve := func(id string) domain.User {
		if id == "" {
			return domain.User{}
		}
		if u, ok := users[id]; ok {
			return u
		}
		u, err := s.Store.Users().GetUserByID(ctx, id)
		if err != nil {
			u = domain.User{} // deleted issuer/redeemer shows as blank
		}
		users[id] = u
		return u
	}

	details := make([]InviteDetail, 0, len(invites))
	for _, inv := range invites {
		creator := resolve(inv.CreatedBy)
		redeemer := resolve(inv.UsedBy)
		details = append(details, InviteDetail{
			InviteCode:     inv,
			CreatedByName:  creator.Name,
			CreatedByEmail: creator.Email,
			UsedByName:     redeemer.Name,
			UsedByEmail:    redeemer.Email,
		})
	}
	return details, nil
}

// DeleteExpired drops expired, never-used codes. Used codes are kept as an
// audit trail.
func (s *InviteService) DeleteExpired(ctx context.Context) error {
	return s.Store.Invites().DeleteExpiredInvites(ctx, time.Now().UTC())
}
