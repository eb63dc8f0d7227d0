package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/pkg/backofficesdk"
	"github.com/elmagroup/backoffice/pkg/httpx"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

// RequireRole loads the authenticated user and rejects the request with 403
// unless they currently hold role. Roles are read from the store on every
// request, so a revoked role takes effect before the session expires. Must
// run after httpx.AuthnMiddleware.
func RequireRole(st store.Store, role domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			userID, ok := httpx.UserIDFromContext(ctx)
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, backofficesdk.ErrorCodeInvalidToken, "missing session")
				return
			}

			u, err := st.Users().GetUserByID(ctx, userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					log.Warn("session for deleted user")
					httpx.WriteError(w, http.StatusForbidden, backofficesdk.ErrorCodeForbidden, "Insufficient privileges")
					return
				}
				log.Error("failed to load actor", slog.Any("error", err))
				httpx.WriteError(w, http.StatusInternalServerError, backofficesdk.ErrorCodeServerError, "Internal server error")
				return
			}

			if !u.Roles.Has(role) {
				log.Warn("missing role", slog.String("required", role.String()))
				httpx.WriteError(w, http.StatusForbidden, backofficesdk.ErrorCodeForbidden, "Insufficient privileges")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
