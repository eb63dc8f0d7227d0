package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/mailer"
	"github.com/elmagroup/backoffice/internal/backoffice/metrics"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/pkg/cryptox"
	"github.com/elmagroup/backoffice/pkg/idx"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

const (
	DefaultInviteExpiryHours = 24
	DefaultInviteMaxHours    = 24 * 30
)

var ErrInvalidInviteRequest = errors.New("invalid invite request")

// InviteView is an invite as listed to general managers: the derived state
// but never the token itself.
type InviteView struct {
	domain.InviteToken
	State domain.InviteState
}

type RedeemResult struct {
	// AlreadyAdmin is set when the redeeming user was an admin already. The
	// token is left untouched in that case.
	AlreadyAdmin bool
	Invite       domain.InviteToken
}

type SendResult struct {
	Invite    domain.InviteToken
	Delivered bool
}

type InviteService struct {
	Store   store.Store
	Audit   *AuditLogger
	Mailer  mailer.Mailer
	Metrics *metrics.Metrics
	Now     func() time.Time

	DefaultExpiryHours int    // 0 means DefaultInviteExpiryHours
	MaxExpiryHours     int    // 0 means DefaultInviteMaxHours
	RedeemURL          string // base link placed in invite emails
}

// DefaultExpiry is the validity window used when the issuer names none.
func (s *InviteService) DefaultExpiry() int {
	if s.DefaultExpiryHours > 0 {
		return s.DefaultExpiryHours
	}
	return DefaultInviteExpiryHours
}

// IssueToken creates a single-use admin invite valid for expiryHours and
// returns the bearer token. The token is only ever returned here: the store
// keeps its fingerprint. Authorization is the caller's concern.
//
// An expiryHours of 0 yields a token that is already expired.
func (s *InviteService) IssueToken(
	ctx context.Context,
	issuerID string,
	expiryHours int,
) (string, domain.InviteToken, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate expiry window.
	maxHours := s.MaxExpiryHours
	if maxHours <= 0 {
		maxHours = DefaultInviteMaxHours
	}
	if expiryHours < 0 || expiryHours > maxHours {
		log.Warn("invite requested with out-of-range expiry",
			slog.Int("expiry_hours", expiryHours),
			slog.Int("max_hours", maxHours),
		)
		s.Metrics.InviteIssued(metrics.ResultRejected)
		return "", domain.InviteToken{}, ErrInvalidInviteRequest
	}

	// 2. Generate 256 bits of randomness, URL-safe.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		s.Metrics.InviteIssued(metrics.ResultError)
		return "", domain.InviteToken{}, err
	}

	now := nowFrom(s.Now)
	invite := domain.InviteToken{
		ID:        idx.NewAt(now).String(),
		TokenHash: cryptox.FingerprintToken(token),
		CreatedBy: issuerID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(expiryHours) * time.Hour),
	}

	// 3. Persist the fingerprint.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Invites().CreateInvite(ctx, invite)
	})
	if err != nil {
		log.Error("failed to store invite",
			slog.String("invite_id", invite.ID),
			slog.Any("error", err),
		)
		s.Metrics.InviteIssued(metrics.ResultError)
		return "", domain.InviteToken{}, err
	}

	log.Info("admin invite issued",
		slog.String("invite_id", invite.ID),
		slog.String("issued_by", issuerID),
		slog.Time("expires_at", invite.ExpiresAt),
	)
	s.Metrics.InviteIssued(metrics.ResultOK)

	// 4. Return the raw token (not the fingerprint).
	return token, invite, nil
}

// Redeem exchanges an invite token for admin privileges. In one
// transaction it consumes the invite, grants admin to userID and records a
// promote_admin entry with the user as both actor and subject. Racing
// redemptions of the same token are serialised by the store and the loser
// sees ErrInviteInvalid.
func (s *InviteService) Redeem(ctx context.Context, token, userID string) (RedeemResult, error) {
	log := slogx.FromContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		s.Metrics.InviteRedeemed(metrics.ResultRejected)
		return RedeemResult{}, ErrInviteNotFound
	}
	fingerprint := cryptox.FingerprintToken(token)

	var result RedeemResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := nowFrom(s.Now)

		// 1. Lookup by exact token match.
		invite, err := tx.Invites().GetInviteByTokenHashForUpdate(ctx, fingerprint)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		if err != nil {
			return err
		}
		result.Invite = invite

		// 2. Consumed or expired.
		if !invite.ValidAt(now) {
			log.Warn("invite redemption rejected",
				slog.String("invite_id", invite.ID),
				slog.String("state", string(invite.State(now))),
			)
			return ErrInviteInvalid
		}

		// 3. Already an admin: nothing to do, token stays usable.
		user, err := tx.Users().GetUserByIDForUpdate(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if user.Roles.Admin() {
			result.AlreadyAdmin = true
			return nil
		}

		// 4. Consume, grant, audit.
		if err := tx.Invites().ConsumeInvite(ctx, invite.ID, userID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInviteInvalid
			}
			return err
		}
		if err := tx.Users().UpdateRoles(ctx, userID, user.Roles.With(domain.RoleAdmin, true), now); err != nil {
			return err
		}
		detail := domain.RoleChangeDetail(domain.RoleAdmin, false, true) + " via invite " + invite.ID
		if _, err := s.Audit.Record(ctx, tx, domain.ActionPromoteAdmin, userID, userID, detail); err != nil {
			return err
		}

		result.Invite.Consumed = true
		result.Invite.ConsumedBy = userID
		result.Invite.ConsumedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) || errors.Is(err, ErrInviteInvalid) || errors.Is(err, ErrUserNotFound) {
			s.Metrics.InviteRedeemed(metrics.ResultRejected)
		} else {
			log.Error("invite redemption failed", slog.String("user_id", userID), slog.Any("error", err))
			s.Metrics.InviteRedeemed(metrics.ResultError)
		}
		return RedeemResult{}, err
	}

	if result.AlreadyAdmin {
		log.Info("invite redemption skipped: user is already admin", slog.String("user_id", userID))
	} else {
		log.Info("user promoted to admin via invite",
			slog.String("user_id", userID),
			slog.String("invite_id", result.Invite.ID),
		)
	}
	s.Metrics.InviteRedeemed(metrics.ResultOK)
	return result, nil
}

// SendInvite issues a token with DefaultExpiry and emails it to the
// given address. The token is committed before delivery is attempted; a
// delivery failure is logged and reported through Delivered only.
func (s *InviteService) SendInvite(ctx context.Context, issuerID, email string) (SendResult, error) {
	log := slogx.FromContext(ctx)

	addr, err := normalizeEmail(email)
	if err != nil {
		return SendResult{}, err
	}

	token, invite, err := s.IssueToken(ctx, issuerID, s.DefaultExpiry())
	if err != nil {
		return SendResult{}, err
	}

	res := SendResult{Invite: invite}
	if s.Mailer == nil {
		return res, nil
	}

	err = s.Mailer.SendInvite(ctx, mailer.Invitation{
		To:        addr,
		Token:     token,
		RedeemURL: s.RedeemURL,
		ExpiresAt: invite.ExpiresAt,
	})
	if err != nil {
		log.Warn("invite email delivery failed",
			slog.String("invite_id", invite.ID),
			slog.String("to", addr),
			slog.Any("error", err),
		)
		s.Metrics.InviteMail(metrics.ResultError)
		return res, nil
	}

	s.Metrics.InviteMail(metrics.ResultOK)
	res.Delivered = true
	return res, nil
}

// ListInvites returns invites newest first with their state at the time of
// the call.
func (s *InviteService) ListInvites(ctx context.Context, page, perPage int) (Page[InviteView], error) {
	limit, offset, page := normalizePage(page, perPage, AuditPerPage)

	invites, err := s.Store.Invites().ListInvites(ctx, limit, offset)
	if err != nil {
		return Page[InviteView]{}, err
	}
	total, err := s.Store.Invites().CountInvites(ctx)
	if err != nil {
		return Page[InviteView]{}, err
	}

	now := nowFrom(s.Now)
	views := make([]InviteView, 0, len(invites))
	for _, inv := range invites {
		views = append(views, InviteView{InviteToken: inv, State: inv.State(now)})
	}
	return Page[InviteView]{Items: views, Page: page, PerPage: limit, Total: total}, nil
}
