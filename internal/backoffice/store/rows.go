package store

import (
	"database/sql"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
)

// Column lists shared by the drivers so every query scans the same shape.
const (
	UserColumns       = `id, username, email, password_hash, is_admin, is_manager, is_general_manager, created_at, updated_at`
	InviteColumns     = `id, token_hash, created_by, created_at, expires_at, consumed, consumed_by, consumed_at`
	AuditEntryColumns = `id, action, actor_id, subject_id, detail, created_at`
)

func ScanUser(s Scanner) (domain.User, error) {
	var (
		u                      domain.User
		admin, manager, genMgr bool
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&admin, &manager, &genMgr, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	u.Roles = domain.NewRoleSet(admin, manager, genMgr)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func ScanInvite(s Scanner) (domain.InviteToken, error) {
	var (
		inv                   domain.InviteToken
		createdBy, consumedBy sql.NullString
		consumedAt            sql.NullTime
	)
	if err := s.Scan(&inv.ID, &inv.TokenHash, &createdBy, &inv.CreatedAt, &inv.ExpiresAt,
		&inv.Consumed, &consumedBy, &consumedAt); err != nil {
		return domain.InviteToken{}, err
	}
	inv.CreatedBy = NullString(createdBy)
	inv.ConsumedBy = NullString(consumedBy)
	if consumedAt.Valid {
		at := consumedAt.Time.UTC()
		inv.ConsumedAt = &at
	}
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	return inv, nil
}

func ScanAuditEntry(s Scanner) (domain.AuditEntry, error) {
	var (
		e      domain.AuditEntry
		action string
	)
	if err := s.Scan(&e.ID, &action, &e.ActorID, &e.SubjectID, &e.Detail, &e.CreatedAt); err != nil {
		return domain.AuditEntry{}, err
	}
	e.Action = domain.AuditAction(action)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// CollectRows scans every row with scan and closes rows.
func CollectRows[T any](rows *sql.Rows, scan func(Scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func NullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func StringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
