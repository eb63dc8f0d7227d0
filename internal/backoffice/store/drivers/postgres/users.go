package postgres

import (
	"context"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
)

type usersRepo struct {
	q store.DBTX
}

const selectUser = `SELECT ` + store.UserColumns + ` FROM users`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := store.ScanUser(r.q.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByIDForUpdate(ctx context.Context, id string) (domain.User, error) {
	u, err := store.ScanUser(r.q.QueryRowContext(ctx, selectUser+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := store.ScanUser(r.q.QueryRowContext(ctx, selectUser+` WHERE username = $1`, username))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := store.ScanUser(r.q.QueryRowContext(ctx, selectUser+` WHERE email = $1`, email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+store.UserColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Username, u.Email, u.PasswordHash,
		u.Roles.Admin(), u.Roles.Manager(), u.Roles.GeneralManager(),
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return mapUnique(err)
}

func (r *usersRepo) UpdateRoles(ctx context.Context, userID string, roles domain.RoleSet, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET is_admin = $1, is_manager = $2, is_general_manager = $3, updated_at = $4
		WHERE id = $5`,
		roles.Admin(), roles.Manager(), roles.GeneralManager(), at.UTC(), userID,
	)
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

func (r *usersRepo) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx, selectUser+` ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return store.CollectRows(rows, store.ScanUser)
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
