package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapDisabled     = errors.New("bootstrap is disabled")
)

// BootstrapService creates the first general manager on an empty system.
type BootstrapService struct {
	Store store.Store
	Audit *AuditLogger
	Token string // BOOTSTRAP_TOKEN; empty disables bootstrap
	Now   func() time.Time
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates a user holding every role and records the three
// promotions with the user as actor and subject.
func (s *BootstrapService) Bootstrap(
	ctx context.Context,
	token string,
	username string,
	email string,
	password string,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate provided token
	if s.Token == "" {
		return domain.User{}, ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	// 2. Build the account
	now := nowFrom(s.Now)
	roles := domain.NewRoleSet(true, true, true)
	u, err := newUser(username, email, password, roles, now)
	if err != nil {
		return domain.User{}, err
	}

	// 3. Create user and audit entries in one transaction, re-checking
	// emptiness inside it.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}

		if err := createUser(ctx, tx, u); err != nil {
			return err
		}
		for _, r := range domain.Roles {
			if _, err := s.Audit.Record(ctx, tx, domain.ActionFor(r, true), u.ID, u.ID, "bootstrap"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBootstrapAlready) {
			l.Warn("attempted bootstrap on already-bootstrapped system")
		} else {
			l.Error("bootstrap failed", slog.Any("error", err))
		}
		return domain.User{}, err
	}

	l.Info("successfully bootstrapped system", slog.String("user_id", u.ID))
	return u, nil
}
