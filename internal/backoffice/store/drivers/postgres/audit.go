package postgres

import (
	"context"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
)

type auditRepo struct {
	q store.DBTX
}

const selectAuditEntry = `SELECT ` + store.AuditEntryColumns + ` FROM audit_log`

func (r *auditRepo) AppendEntry(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO audit_log (`+store.AuditEntryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, string(e.Action), e.ActorID, e.SubjectID, e.Detail, e.CreatedAt.UTC(),
	)
	return err
}

func (r *auditRepo) ListEntries(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error) {
	rows, err := r.q.QueryContext(ctx, selectAuditEntry+` ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return store.CollectRows(rows, store.ScanAuditEntry)
}

func (r *auditRepo) CountEntries(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n)
	return n, err
}

func (r *auditRepo) ListEntriesForSubject(ctx context.Context, userID string) ([]domain.AuditEntry, error) {
	rows, err := r.q.QueryContext(ctx, selectAuditEntry+` WHERE subject_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return store.CollectRows(rows, store.ScanAuditEntry)
}
