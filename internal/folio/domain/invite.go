package domain

import "time"

// InviteCode is a single-use admin provisioning credential. The raw code is
// stored so admins can list outstanding invites; it is random enough
// (128 bits) that the table is not a useful oracle.
type InviteCode struct {
	ID        string
	Code      string
	CreatedBy string
	IsUsed    bool
	UsedBy    string // empty until redeemed
	UsedAt    *time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (i InviteCode) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Redeemable reports whether the code could still mint an admin. The store's
// conditional update is the authority; this is for display only.
func (i InviteCode) Redeemable(now time.Time) bool {
	return !i.IsUsed && !i.Expired(now)
}
