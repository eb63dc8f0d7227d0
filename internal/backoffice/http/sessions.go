package http

import (
	"net/http"
	"time"

	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/pkg/backofficesdk"
	"github.com/elmagroup/backoffice/pkg/httpx"
)

type SessionHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP logs a user in.
//
//	@Summary		Log in
//	@Description	Exchanges a username or email and a password for a bearer session token.
//	@Tags			Sessions
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			login		formData	string	true	"Username or email"
//	@Param			password	formData	string	true	"Password"
//	@Success		200			{object}	backofficesdk.SessionResponse
//	@Failure		400			{object}	backofficesdk.ErrorResponse	"Invalid form data"
//	@Failure		401			{object}	backofficesdk.ErrorResponse	"Invalid login or password"
//	@Failure		429			{object}	backofficesdk.ErrorResponse	"Too many attempts"
//	@Router			/v1/sessions [post].
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "Invalid form data")
		return
	}

	sess, err := h.SessionService.Login(r.Context(), r.PostFormValue("login"), r.PostFormValue("password"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, backofficesdk.SessionResponse{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(sess.ExpiresAt).Seconds()),
		User:        toUser(sess.User),
	})
}
