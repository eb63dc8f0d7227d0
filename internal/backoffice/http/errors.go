package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/pkg/backofficesdk"
	"github.com/elmagroup/backoffice/pkg/httpx"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

// writeServiceError translates a service error into its JSON response.
// Anything unrecognised is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInviteNotFound):
		httpx.WriteError(w, http.StatusNotFound, backofficesdk.ErrorCodeNotFound, "Invite token not found")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, backofficesdk.ErrorCodeNotFound, "User not found")
	case errors.Is(err, service.ErrInviteInvalid):
		httpx.WriteError(w, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidToken, "Invite token has been used or has expired")
	case errors.Is(err, service.ErrSelfModification):
		httpx.WriteError(w, http.StatusConflict, backofficesdk.ErrorCodeSelfModification, "You cannot change your own privileges")
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteError(w, http.StatusForbidden, backofficesdk.ErrorCodeForbidden, "Insufficient privileges")
	case errors.Is(err, service.ErrUsernameTaken):
		httpx.WriteError(w, http.StatusConflict, backofficesdk.ErrorCodeConflict, "Username already taken")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, backofficesdk.ErrorCodeConflict, "Email already registered")
	case errors.Is(err, service.ErrWeakPassword):
		httpx.WriteError(w, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidRequest, err.Error())
	case errors.Is(err, service.ErrInvalidInviteRequest):
		httpx.WriteError(w, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidRequest, "expiry_hours is out of range")
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidRequest, "Invalid request")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, backofficesdk.ErrorCodeUnauthorized, "Invalid login or password")
	case errors.Is(err, service.ErrBootstrapDisabled):
		httpx.WriteError(w, http.StatusNotFound, backofficesdk.ErrorCodeNotFound, "Bootstrap endpoint is not enabled")
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, backofficesdk.ErrorCodeUnauthorized, "Invalid bootstrap token")
	case errors.Is(err, service.ErrBootstrapAlready):
		httpx.WriteError(w, http.StatusUnauthorized, backofficesdk.ErrorCodeUnauthorized, "System has already been bootstrapped")
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, backofficesdk.ErrorCodeServerError, "Internal server error")
	}
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidRequest, desc)
}
