package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict means a conditional write matched no row because another
	// transaction changed it first.
	ErrConflict = errors.New("store: conflicting update")
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Repositories are reached through methods so that code
// running inside WithTx only ever sees the transaction-scoped ones.
type Store interface {
	Users() Users
	Invites() Invites
	AuditLog() AuditLog

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit or
	// Rollback on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByIDForUpdate reads a user and, where the driver supports it,
	// locks the row until the transaction ends.
	GetUserByIDForUpdate(ctx context.Context, id string) (domain.User, error)

	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Duplicate usernames or emails return
	// ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateRoles overwrites the privilege flags and bumps updated_at.
	UpdateRoles(ctx context.Context, userID string, roles domain.RoleSet, at time.Time) error

	// ListUsers returns users newest first.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Invites interface {
	CreateInvite(ctx context.Context, inv domain.InviteToken) error

	// GetInviteByTokenHash returns the invite in any state.
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.InviteToken, error)

	// GetInviteByTokenHashForUpdate is GetInviteByTokenHash with a row lock
	// where the driver supports it.
	GetInviteByTokenHashForUpdate(ctx context.Context, hash string) (domain.InviteToken, error)

	// ConsumeInvite marks an unconsumed invite as consumed by userID. It
	// returns ErrConflict when the invite was already consumed.
	ConsumeInvite(ctx context.Context, inviteID, userID string, at time.Time) error

	// ListInvites returns invites newest first.
	ListInvites(ctx context.Context, limit, offset int) ([]domain.InviteToken, error)
	CountInvites(ctx context.Context) (int, error)
}

// AuditLog is append-only. Neither driver exposes update or delete and the
// schema rejects both.
type AuditLog interface {
	AppendEntry(ctx context.Context, e domain.AuditEntry) error

	// ListEntries returns entries newest first.
	ListEntries(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error)
	CountEntries(ctx context.Context) (int, error)

	// ListEntriesForSubject returns every entry about userID, newest first.
	ListEntriesForSubject(ctx context.Context, userID string) ([]domain.AuditEntry, error)
}

// DBTX is the subset of *sql.DB and *sql.Tx the drivers query through.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// DuplicateError reports which unique field a write collided on. It
// matches ErrAlreadyExists.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return "store: duplicate " + e.Field }

func (e *DuplicateError) Is(target error) bool { return target == ErrAlreadyExists }
