package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/pkg/cryptox"
	"github.com/elmagroup/backoffice/pkg/idx"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

// UsersPerPage is the default page size of the user listing.
const UsersPerPage = 20

const minPasswordLength = 8

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
	ErrWeakPassword  = errors.New("password must be at least 8 characters")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{2,64}$`)

type UserService struct {
	Store store.Store
	Now   func() time.Time
}

// Register creates an account without any privileges.
func (s *UserService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	u, err := newUser(username, email, password, domain.RoleSet{}, nowFrom(s.Now))
	if err != nil {
		return domain.User{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return createUser(ctx, tx, u)
	})
	if err != nil {
		if !errors.Is(err, ErrUsernameTaken) && !errors.Is(err, ErrEmailTaken) {
			log.Error("failed to create user", slog.String("username", u.Username), slog.Any("error", err))
		}
		return domain.User{}, err
	}

	log.Info("user registered", slog.String("user_id", u.ID), slog.String("username", u.Username))
	return u, nil
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// List returns users newest first.
func (s *UserService) List(ctx context.Context, page, perPage int) (Page[domain.User], error) {
	limit, offset, page := normalizePage(page, perPage, UsersPerPage)

	users, err := s.Store.Users().ListUsers(ctx, limit, offset)
	if err != nil {
		return Page[domain.User]{}, err
	}
	total, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return Page[domain.User]{}, err
	}
	return Page[domain.User]{Items: users, Page: page, PerPage: limit, Total: total}, nil
}

// newUser validates input and hashes the password.
func newUser(username, email, password string, roles domain.RoleSet, now time.Time) (domain.User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return domain.User{}, ErrInvalidRequest
	}
	addr, err := normalizeEmail(email)
	if err != nil {
		return domain.User{}, err
	}
	if len(password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	return domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     username,
		Email:        addr,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// createUser inserts u and maps unique violations to the taken errors.
func createUser(ctx context.Context, tx store.Tx, u domain.User) error {
	err := tx.Users().CreateUser(ctx, u)

	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		if dup.Field == "email" {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	return err
}
