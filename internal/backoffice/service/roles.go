package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/metrics"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

// RoleChange describes the outcome of a role mutation. Changed is false
// when the flag already had the requested value; no entry is written then.
type RoleChange struct {
	Target  domain.User
	Role    domain.Role
	From    bool
	To      bool
	Changed bool
	Entry   *domain.AuditEntry
}

type RolesService struct {
	Store   store.Store
	Audit   *AuditLogger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// SetRole sets one privilege flag of targetID on behalf of actorID.
//
// Self-targeting is rejected before anything else. Changing general-manager
// status requires the actor to be a general manager; changing admin or
// manager status requires the actor to be an admin. Other flags of the
// target are left alone.
func (s *RolesService) SetRole(
	ctx context.Context,
	actorID string,
	targetID string,
	role domain.Role,
	grant bool,
) (RoleChange, error) {
	return s.mutate(ctx, actorID, targetID, role, func(bool) bool { return grant })
}

// ToggleRole flips one privilege flag of targetID. The current value is
// read inside the transaction.
func (s *RolesService) ToggleRole(
	ctx context.Context,
	actorID string,
	targetID string,
	role domain.Role,
) (RoleChange, error) {
	return s.mutate(ctx, actorID, targetID, role, func(cur bool) bool { return !cur })
}

// PromoteAdminByEmail grants admin to the user with the given email. Only a
// general manager may do this.
func (s *RolesService) PromoteAdminByEmail(ctx context.Context, actorID, email string) (RoleChange, error) {
	log := slogx.FromContext(ctx)

	addr, err := normalizeEmail(email)
	if err != nil {
		return RoleChange{}, err
	}

	var change RoleChange
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := nowFrom(s.Now)

		// Resolve the address first so both rows can be locked in order.
		var targetID string
		byEmail, err := tx.Users().GetUserByEmail(ctx, addr)
		switch {
		case err == nil:
			targetID = byEmail.ID
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		locked, err := lockUsers(ctx, tx, actorID, targetID)
		if err != nil {
			return err
		}
		actor, ok := locked[actorID]
		if !ok || !actor.Roles.GeneralManager() {
			return ErrUnauthorized
		}
		target, ok := locked[targetID]
		if !ok {
			return ErrUserNotFound
		}
		if target.ID == actor.ID {
			return ErrSelfModification
		}

		change = RoleChange{Target: target, Role: domain.RoleAdmin, From: target.Roles.Admin(), To: true}
		if target.Roles.Admin() {
			return nil
		}

		change.Target.Roles = target.Roles.With(domain.RoleAdmin, true)
		if err := tx.Users().UpdateRoles(ctx, target.ID, change.Target.Roles, now); err != nil {
			return err
		}
		detail := "Promoted " + target.Email + " to admin by email"
		entry, err := s.Audit.Record(ctx, tx, domain.ActionPromoteAdmin, actor.ID, target.ID, detail)
		if err != nil {
			return err
		}
		change.Changed = true
		change.Entry = &entry
		return nil
	})
	if err != nil {
		s.observe(ctx, actorID, "", domain.RoleAdmin, err)
		return RoleChange{}, err
	}

	if change.Changed {
		log.Info("user promoted to admin by email",
			slog.String("actor_id", actorID),
			slog.String("target_id", change.Target.ID),
		)
	}
	s.Metrics.RoleChange(string(domain.RoleAdmin), metrics.ResultOK)
	return change, nil
}

func (s *RolesService) mutate(
	ctx context.Context,
	actorID string,
	targetID string,
	role domain.Role,
	next func(current bool) bool,
) (RoleChange, error) {
	log := slogx.FromContext(ctx)

	// 1. Self-modification is refused outright.
	if actorID == targetID {
		s.observe(ctx, actorID, targetID, role, ErrSelfModification)
		return RoleChange{}, ErrSelfModification
	}

	var change RoleChange
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := nowFrom(s.Now)

		// 2. Validate the role before touching any rows.
		parsed, err := domain.ParseRole(string(role))
		if err != nil {
			return ErrInvalidRequest
		}
		role = parsed

		// 3. Lock actor and target, then check actor privilege.
		locked, err := lockUsers(ctx, tx, actorID, targetID)
		if err != nil {
			return err
		}
		actor, ok := locked[actorID]
		if !ok || !actor.Roles.Has(domain.RequiredActorRole(role)) {
			return ErrUnauthorized
		}

		// 4. Target.
		target, ok := locked[targetID]
		if !ok {
			return ErrUserNotFound
		}

		from := target.Roles.Has(role)
		to := next(from)
		change = RoleChange{Target: target, Role: role, From: from, To: to}
		if from == to {
			return nil
		}

		// 5. Flip exactly one flag and record it.
		change.Target.Roles = target.Roles.With(role, to)
		if err := tx.Users().UpdateRoles(ctx, targetID, change.Target.Roles, now); err != nil {
			return err
		}
		entry, err := s.Audit.Record(ctx, tx, domain.ActionFor(role, to), actorID, targetID,
			domain.RoleChangeDetail(role, from, to))
		if err != nil {
			return err
		}
		change.Changed = true
		change.Entry = &entry
		return nil
	})
	if err != nil {
		s.observe(ctx, actorID, targetID, role, err)
		return RoleChange{}, err
	}

	if change.Changed {
		log.Info("role changed",
			slog.String("actor_id", actorID),
			slog.String("target_id", targetID),
			slog.String("role", string(role)),
			slog.Bool("from", change.From),
			slog.Bool("to", change.To),
		)
	}
	s.Metrics.RoleChange(string(role), metrics.ResultOK)
	return change, nil
}

// lockUsers reads the given users for update in ascending ID order, so two
// transactions touching the same pair always lock in the same sequence.
// Missing users and empty IDs are left out of the result.
func lockUsers(ctx context.Context, tx store.Tx, ids ...string) (map[string]domain.User, error) {
	ordered := slices.Sorted(slices.Values(ids))
	ordered = slices.Compact(ordered)

	locked := make(map[string]domain.User, len(ordered))
	for _, id := range ordered {
		if id == "" {
			continue
		}
		u, err := tx.Users().GetUserByIDForUpdate(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		locked[id] = u
	}
	return locked, nil
}

// observe logs and counts a failed role mutation.
func (s *RolesService) observe(ctx context.Context, actorID, targetID string, role domain.Role, err error) {
	log := slogx.FromContext(ctx)
	attrs := []any{
		slog.String("actor_id", actorID),
		slog.String("target_id", targetID),
		slog.String("role", string(role)),
	}

	switch {
	case errors.Is(err, ErrSelfModification),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidRequest):
		log.Warn("role change rejected", append(attrs, slog.String("reason", err.Error()))...)
		s.Metrics.RoleChange(roleLabel(role), metrics.ResultRejected)
	default:
		log.Error("role change failed", append(attrs, slog.Any("error", err))...)
		s.Metrics.RoleChange(roleLabel(role), metrics.ResultError)
	}
}

// roleLabel keeps caller-supplied role strings out of metric labels.
func roleLabel(role domain.Role) string {
	r, err := domain.ParseRole(string(role))
	if err != nil {
		return "unknown"
	}
	return string(r)
}
