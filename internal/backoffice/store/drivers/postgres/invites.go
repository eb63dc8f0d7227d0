package postgres

import (
	"context"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
)

type invitesRepo struct {
	q store.DBTX
}

const selectInvite = `SELECT ` + store.InviteColumns + ` FROM invite_tokens`

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.InviteToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invite_tokens (id, token_hash, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		inv.ID, inv.TokenHash, store.StringNull(inv.CreatedBy),
		inv.CreatedAt.UTC(), inv.ExpiresAt.UTC(),
	)
	return mapUnique(err)
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.InviteToken, error) {
	inv, err := store.ScanInvite(r.q.QueryRowContext(ctx, selectInvite+` WHERE token_hash = $1`, hash))
	if err != nil {
		return domain.InviteToken{}, mapNotFound(err)
	}
	return inv, nil
}

// GetInviteByTokenHashForUpdate locks the invite row so a concurrent
// redemption waits and then observes it as consumed.
func (r *invitesRepo) GetInviteByTokenHashForUpdate(ctx context.Context, hash string) (domain.InviteToken, error) {
	inv, err := store.ScanInvite(r.q.QueryRowContext(ctx, selectInvite+` WHERE token_hash = $1 FOR UPDATE`, hash))
	if err != nil {
		return domain.InviteToken{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) ConsumeInvite(ctx context.Context, inviteID, userID string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invite_tokens
		SET consumed = TRUE, consumed_by = $1, consumed_at = $2
		WHERE id = $3 AND NOT consumed`,
		userID, at.UTC(), inviteID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *invitesRepo) ListInvites(ctx context.Context, limit, offset int) ([]domain.InviteToken, error) {
	rows, err := r.q.QueryContext(ctx, selectInvite+` ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return store.CollectRows(rows, store.ScanInvite)
}

func (r *invitesRepo) CountInvites(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM invite_tokens`).Scan(&n)
	return n, err
}
