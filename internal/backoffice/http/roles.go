package http

import (
	"net/http"
	"strconv"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/pkg/httpx"
)

type RolesHandler struct {
	RolesService *service.RolesService
}

// HandleSet grants or revokes one role on another user.
//
//	@Summary		Set role
//	@Description	Changing general_manager requires the caller to be a general manager. Changing admin or manager requires the caller to be an admin. Callers cannot change their own roles.
//	@Tags			Roles
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			id		path		string	true	"Target user ID"
//	@Param			role	path		string	true	"admin, manager or general_manager"
//	@Param			grant	formData	bool	true	"true to grant, false to revoke"
//	@Success		200		{object}	backofficesdk.RoleChangeResponse
//	@Failure		400		{object}	backofficesdk.ErrorResponse	"Unknown role or missing grant"
//	@Failure		403		{object}	backofficesdk.ErrorResponse	"Insufficient privileges"
//	@Failure		404		{object}	backofficesdk.ErrorResponse	"User not found"
//	@Failure		409		{object}	backofficesdk.ErrorResponse	"Self modification"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/roles/{role} [post].
func (h *RolesHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "Invalid form data")
		return
	}
	grant, err := strconv.ParseBool(r.PostFormValue("grant"))
	if err != nil {
		writeBadRequest(w, "grant must be true or false")
		return
	}
	actorID, _ := httpx.UserIDFromContext(r.Context())
	change, err := h.RolesService.SetRole(r.Context(), actorID, r.PathValue("id"), pathRole(r), grant)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRoleChange(change))
}

// HandleToggle flips one role on another user.
//
//	@Summary		Toggle role
//	@Description	Same authorization rules as setting a role. The current value is read at the time of the change.
//	@Tags			Roles
//	@Produce		json
//	@Param			id		path		string	true	"Target user ID"
//	@Param			role	path		string	true	"admin, manager or general_manager"
//	@Success		200		{object}	backofficesdk.RoleChangeResponse
//	@Failure		400		{object}	backofficesdk.ErrorResponse	"Unknown role"
//	@Failure		403		{object}	backofficesdk.ErrorResponse	"Insufficient privileges"
//	@Failure		404		{object}	backofficesdk.ErrorResponse	"User not found"
//	@Failure		409		{object}	backofficesdk.ErrorResponse	"Self modification"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/roles/{role}/toggle [post].
func (h *RolesHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	actorID, _ := httpx.UserIDFromContext(r.Context())
	change, err := h.RolesService.ToggleRole(r.Context(), actorID, r.PathValue("id"), pathRole(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRoleChange(change))
}

// HandlePromoteAdmin grants admin to the user registered under an email.
//
//	@Summary		Promote to admin by email
//	@Description	Requires general manager.
//	@Tags			Roles
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			email	formData	string	true	"Email of the user to promote"
//	@Success		200		{object}	backofficesdk.RoleChangeResponse
//	@Failure		400		{object}	backofficesdk.ErrorResponse	"Invalid email"
//	@Failure		403		{object}	backofficesdk.ErrorResponse	"Not a general manager"
//	@Failure		404		{object}	backofficesdk.ErrorResponse	"No user with that email"
//	@Failure		409		{object}	backofficesdk.ErrorResponse	"Self modification"
//	@Security		BearerAuth
//	@Router			/v1/admins/promote [post].
func (h *RolesHandler) HandlePromoteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "Invalid form data")
		return
	}
	email := r.PostFormValue("email")
	if email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	actorID, _ := httpx.UserIDFromContext(r.Context())
	change, err := h.RolesService.PromoteAdminByEmail(r.Context(), actorID, email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRoleChange(change))
}

// pathRole is validated by the service, after the self-modification check.
func pathRole(r *http.Request) domain.Role {
	return domain.Role(r.PathValue("role"))
}
