package store

import (
	"context"
	"errors"
	"time"

	"github.com/foliokit/folio/internal/folio/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. Sub-repositories keep the surface tidy and
// make it obvious which operations belong together in a transaction.
type Store interface {
	Users() Users
	Invites() Invites
	Portfolios() Portfolios
	Projects() Projects

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle multi-step atomic operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and duplicate checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// A users.email UNIQUE violation maps to ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser rewrites name, email, role and password_hash, bumping
	// updated_at. Email collisions map to ErrAlreadyExists.
	UpdateUser(ctx context.Context, u domain.User) error

	// DeleteUser cascades to portfolios and projects (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Invites interface {
	// CreateInvite writes a new invite code row.
	CreateInvite(ctx context.Context, inv domain.InviteCode) error

	// GetInviteByCode returns an invite regardless of state.
	GetInviteByCode(ctx context.Context, code string) (domain.InviteCode, error)

	// ConsumeInvite flips is_used with a single conditional update, guarded
	// on the code still being unused and unexpired as of now. It returns
	// ErrNotFound when the guard matches no row; callers treat that as an
	// invalid/used/expired code without distinguishing which.
	ConsumeInvite(ctx context.Context, code string, usedBy string, now time.Time) error

	// ListInvites returns all invites ordered by creation date (newest first).
	ListInvites(ctx context.Context) ([]domain.InviteCode, error)

	// DeleteExpiredInvites removes expired, never-used codes (housekeeping).
	DeleteExpiredInvites(ctx context.Context, now time.Time) error
}

type Portfolios interface {
	// CreatePortfolio inserts a portfolio. A portfolios.user_id UNIQUE
	// violation maps to ErrAlreadyExists (one portfolio per user).
	CreatePortfolio(ctx context.Context, p domain.Portfolio) error

	GetPortfolioByID(ctx context.Context, id string) (domain.Portfolio, error)
	GetPortfolioByUserID(ctx context.Context, userID string) (domain.Portfolio, error)

	// ListPortfolios returns every portfolio for the public gallery,
	// newest first.
	ListPortfolios(ctx context.Context) ([]domain.Portfolio, error)

	// UpdatePortfolio rewrites the mutable fields and bumps updated_at.
	UpdatePortfolio(ctx context.Context, p domain.Portfolio) error

	DeletePortfolio(ctx context.Context, id string) error
	DeletePortfolioByUserID(ctx context.Context, userID string) error
}

type Projects interface {
	CreateProject(ctx context.Context, p domain.Project) error

	// GetProjectByID returns a project by id regardless of owner; ownership
	// checks belong to the service layer.
	GetProjectByID(ctx context.Context, id string) (domain.Project, error)

	// ListProjectsByUserID returns the owner's projects, newest first.
	ListProjectsByUserID(ctx context.Context, userID string) ([]domain.Project, error)

	UpdateProject(ctx context.Context, p domain.Project) error
	DeleteProject(ctx context.Context, id string) error
}
