package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/metrics"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/pkg/cryptox"
	"github.com/elmagroup/backoffice/pkg/jwtx"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Session is a signed bearer token for the back-office API.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

type SessionService struct {
	Store   store.Store
	Signer  jwtx.Signer
	Issuer  string
	TTL     time.Duration
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Login authenticates by username or email and returns a session token
// whose subject is the user id.
func (s *SessionService) Login(ctx context.Context, login, password string) (Session, error) {
	log := slogx.FromContext(ctx)

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		s.Metrics.Login(metrics.ResultRejected)
		return Session{}, ErrInvalidCredentials
	}

	var (
		user domain.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.Store.Users().GetUserByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.Store.Users().GetUserByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login for unknown account")
			s.Metrics.Login(metrics.ResultRejected)
			return Session{}, ErrInvalidCredentials
		}
		s.Metrics.Login(metrics.ResultError)
		return Session{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("password verification failed", slog.String("user_id", user.ID), slog.Any("error", err))
		}
		s.Metrics.Login(metrics.ResultRejected)
		return Session{}, ErrInvalidCredentials
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	now := nowFrom(s.Now)
	claims := jwtx.NewSessionClaims(user.ID, user.Username, s.Issuer, ttl, now)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		s.Metrics.Login(metrics.ResultError)
		return Session{}, err
	}

	log.Info("user signed in", slog.String("user_id", user.ID))
	s.Metrics.Login(metrics.ResultOK)
	return Session{Token: token, ExpiresAt: now.Add(ttl), User: user}, nil
}
