package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/store"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, code, created_by, is_used, used_by, used_at, expires_at, created_at`

func scanInvite(row interface{ Scan(dest ...any) error }) (domain.InviteCode, error) {
	var (
		inv    domain.InviteCode
		usedBy sql.NullString
		usedAt sql.NullTime
	)
	err := row.Scan(&inv.ID, &inv.Code, &inv.CreatedBy, &inv.IsUsed,
		&usedBy, &usedAt, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return domain.InviteCode{}, err
	}
	inv.UsedBy = mapNullString(usedBy)
	inv.UsedAt = mapNullTimePtr(usedAt)
	return inv, nil
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.InviteCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invite_codes (id, code, created_by, is_used, used_by, used_at, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Code, inv.CreatedBy, inv.IsUsed,
		mapStringNull(inv.UsedBy), mapOptionalTime(inv.UsedAt),
		inv.ExpiresAt, time.Now().UTC())
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invite_codes WHERE code = ?`, code)
	inv, err := scanInvite(row)
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}
	return inv, nil
}

// ConsumeInvite is the single point where an invite transitions to used. The
// guard makes the redeem race-safe: of two concurrent callers, exactly one
// sees a row affected.
func (r *invitesRepo) ConsumeInvite(ctx context.Context, code string, usedBy string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invite_codes
		 SET is_used = 1, used_by = ?, used_at = ?
		 WHERE code = ? AND is_used = 0 AND expires_at > ?`,
		usedBy, now, code, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitesRepo) ListInvites(ctx context.Context) ([]domain.InviteCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM invite_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.InviteCode
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (r *invitesRepo) DeleteExpiredInvites(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invite_codes WHERE is_used = 0 AND expires_at <= ?`, now)
	return err
}
