package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/metrics"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/pkg/idx"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

// AuditPerPage is the default audit page size.
const AuditPerPage = 30

// AuditLogger appends privilege-change records. Writes always go through
// the caller's transaction: if Record fails the caller returns the error
// and the whole mutation rolls back.
type AuditLogger struct {
	Store   store.Store
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Record appends one entry inside tx and returns it.
func (a *AuditLogger) Record(
	ctx context.Context,
	tx store.Tx,
	action domain.AuditAction,
	actorID string,
	subjectID string,
	detail string,
) (domain.AuditEntry, error) {
	log := slogx.FromContext(ctx)

	if !action.Valid() {
		return domain.AuditEntry{}, fmt.Errorf("audit: unknown action %q", action)
	}

	entry := domain.AuditEntry{
		ID:        idx.New().String(),
		Action:    action,
		ActorID:   actorID,
		SubjectID: subjectID,
		Detail:    detail,
		CreatedAt: nowFrom(a.Now),
	}

	if err := tx.AuditLog().AppendEntry(ctx, entry); err != nil {
		a.Metrics.AuditWrite(string(action), metrics.ResultError)
		log.Error("failed to write audit entry",
			slog.String("action", string(action)),
			slog.String("actor_id", actorID),
			slog.String("subject_id", subjectID),
			slog.Any("error", err),
		)
		return domain.AuditEntry{}, fmt.Errorf("audit: append: %w", err)
	}

	a.Metrics.AuditWrite(string(action), metrics.ResultOK)
	return entry, nil
}

// List returns audit entries newest first.
func (a *AuditLogger) List(ctx context.Context, page, perPage int) (Page[domain.AuditEntry], error) {
	limit, offset, page := normalizePage(page, perPage, AuditPerPage)

	entries, err := a.Store.AuditLog().ListEntries(ctx, limit, offset)
	if err != nil {
		return Page[domain.AuditEntry]{}, err
	}
	total, err := a.Store.AuditLog().CountEntries(ctx)
	if err != nil {
		return Page[domain.AuditEntry]{}, err
	}

	return Page[domain.AuditEntry]{Items: entries, Page: page, PerPage: limit, Total: total}, nil
}

// ListForSubject returns every entry about userID, newest first.
func (a *AuditLogger) ListForSubject(ctx context.Context, userID string) ([]domain.AuditEntry, error) {
	if _, err := a.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return a.Store.AuditLog().ListEntriesForSubject(ctx, userID)
}
