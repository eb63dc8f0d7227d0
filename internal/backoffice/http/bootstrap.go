package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/pkg/backofficesdk"
	"github.com/elmagroup/backoffice/pkg/httpx"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the back office
//	@Description	Creates the first user holding admin, manager and general manager. Only available while no user exists and a bootstrap token is configured.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string							true	"Bootstrap token"
//	@Param			request				body		backofficesdk.BootstrapRequest	true	"First user"
//	@Success		201					{object}	backofficesdk.BootstrapResponse
//	@Failure		400					{object}	backofficesdk.ErrorResponse	"Invalid request body"
//	@Failure		401					{object}	backofficesdk.ErrorResponse	"Invalid token, or already bootstrapped"
//	@Failure		404					{object}	backofficesdk.ErrorResponse	"Bootstrap not enabled"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		httpx.WriteError(w, http.StatusNotFound, backofficesdk.ErrorCodeNotFound, "Bootstrap endpoint is not enabled")
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, backofficesdk.ErrorCodeUnauthorized,
			"Bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	// 3. Parse request body
	var req backofficesdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Request body must be valid JSON")
		return
	}

	// 4. Perform bootstrap
	u, err := h.BootstrapService.Bootstrap(r.Context(), token,
		strings.TrimSpace(req.Username), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("bootstrap complete")
	httpx.WriteJSON(w, http.StatusCreated, backofficesdk.BootstrapResponse{UserID: u.ID})
}
