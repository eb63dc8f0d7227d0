package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/internal/backoffice/store/drivers/sqlite"
	"github.com/elmagroup/backoffice/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newUser(t *testing.T, s store.Store, username string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.org",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	alice := newUser(t, s, "alice")

	t.Run("lookup by id, username and email", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, "alice", got.Username)
		require.Equal(t, domain.RoleSet{}, got.Roles)

		got, err = s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)

		got, err = s.Users().GetUserByEmail(ctx, "alice@example.org")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)

		_, err = s.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicates report the field", func(t *testing.T) {
		dup := alice
		dup.ID = idx.New().String()
		dup.Email = "other@example.org"
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		var de *store.DuplicateError
		require.True(t, errors.As(err, &de))
		require.Equal(t, "username", de.Field)

		dup.Username = "alice2"
		dup.Email = alice.Email
		err = s.Users().CreateUser(ctx, dup)
		require.True(t, errors.As(err, &de))
		require.Equal(t, "email", de.Field)
	})

	t.Run("update roles", func(t *testing.T) {
		roles := domain.RoleSet{}.With(domain.RoleAdmin, true).With(domain.RoleGeneralManager, true)
		require.NoError(t, s.Users().UpdateRoles(ctx, alice.ID, roles, time.Now()))

		got, err := s.Users().GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.True(t, got.Roles.Admin())
		require.False(t, got.Roles.Manager())
		require.True(t, got.Roles.GeneralManager())

		require.ErrorIs(t, s.Users().UpdateRoles(ctx, "missing", roles, time.Now()), store.ErrNotFound)
	})

	t.Run("list and count", func(t *testing.T) {
		newUser(t, s, "bob")
		newUser(t, s, "carol")

		n, err := s.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, n)

		page, err := s.Users().ListUsers(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.Equal(t, "bob", page[0].Username)
		require.Equal(t, "alice", page[1].Username)
	})
}

func TestInvites(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	issuer := newUser(t, s, "issuer")
	redeemer := newUser(t, s, "redeemer")

	now := time.Now().UTC().Truncate(time.Second)
	inv := domain.InviteToken{
		ID:        idx.New().String(),
		TokenHash: "fingerprint-1",
		CreatedBy: issuer.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	require.NoError(t, s.Invites().CreateInvite(ctx, inv))

	got, err := s.Invites().GetInviteByTokenHash(ctx, "fingerprint-1")
	require.NoError(t, err)
	require.Equal(t, inv.ID, got.ID)
	require.Equal(t, issuer.ID, got.CreatedBy)
	require.True(t, got.ExpiresAt.Equal(inv.ExpiresAt))
	require.False(t, got.Consumed)
	require.Nil(t, got.ConsumedAt)

	_, err = s.Invites().GetInviteByTokenHash(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Invites().ConsumeInvite(ctx, inv.ID, redeemer.ID, now))
	require.ErrorIs(t, s.Invites().ConsumeInvite(ctx, inv.ID, redeemer.ID, now), store.ErrConflict)

	got, err = s.Invites().GetInviteByTokenHashForUpdate(ctx, "fingerprint-1")
	require.NoError(t, err)
	require.True(t, got.Consumed)
	require.Equal(t, redeemer.ID, got.ConsumedBy)
	require.NotNil(t, got.ConsumedAt)

	t.Run("system-issued invite has no creator", func(t *testing.T) {
		require.NoError(t, s.Invites().CreateInvite(ctx, domain.InviteToken{
			ID:        idx.New().String(),
			TokenHash: "fingerprint-2",
			CreatedAt: now.Add(time.Second),
			ExpiresAt: now,
		}))

		list, err := s.Invites().ListInvites(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "fingerprint-2", list[0].TokenHash)
		require.Empty(t, list[0].CreatedBy)

		n, err := s.Invites().CountInvites(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})
}

func TestAuditLog(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	actor := newUser(t, s, "actor")
	subject := newUser(t, s, "subject")

	base := time.Now().UTC()
	for i, action := range []domain.AuditAction{
		domain.ActionPromoteAdmin, domain.ActionPromoteManager, domain.ActionDemoteAdmin,
	} {
		sub := subject.ID
		if i == 1 {
			sub = actor.ID
		}
		require.NoError(t, s.AuditLog().AppendEntry(ctx, domain.AuditEntry{
			ID:        idx.New().String(),
			Action:    action,
			ActorID:   actor.ID,
			SubjectID: sub,
			Detail:    string(action),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	all, err := s.AuditLog().ListEntries(ctx, 30, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, domain.ActionDemoteAdmin, all[0].Action)
	require.Equal(t, domain.ActionPromoteAdmin, all[2].Action)

	n, err := s.AuditLog().CountEntries(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	forSubject, err := s.AuditLog().ListEntriesForSubject(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, forSubject, 2)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now()
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Username: "ghost", Email: "ghost@example.org",
			PasswordHash: "h", CreatedAt: now, UpdatedAt: now,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	require.ErrorIs(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	}), sql.ErrTxDone)
}
