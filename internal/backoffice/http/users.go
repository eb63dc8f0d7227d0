package http

import (
	"encoding/json"
	"net/http"

	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/pkg/backofficesdk"
	"github.com/elmagroup/backoffice/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleRegister creates an account without privileges.
//
//	@Summary		Register
//	@Description	Creates a user account. New accounts hold no roles.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		backofficesdk.RegisterRequest	true	"Account"
//	@Success		201		{object}	backofficesdk.UserResponse
//	@Failure		400		{object}	backofficesdk.ErrorResponse	"Invalid username, email or password"
//	@Failure		409		{object}	backofficesdk.ErrorResponse	"Username or email taken"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req backofficesdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Request body must be valid JSON")
		return
	}

	u, err := h.UserService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

// HandleMe returns the caller's account with the roles held right now.
//
//	@Summary		Current user
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	backofficesdk.UserResponse
//	@Failure		401	{object}	backofficesdk.ErrorResponse	"Missing or invalid session"
//	@Security		BearerAuth
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())

	u, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleList returns one page of users ordered by username.
//
//	@Summary		List users
//	@Description	Requires admin.
//	@Tags			Users
//	@Produce		json
//	@Param			page		query		int	false	"Page number, from 1"
//	@Param			per_page	query		int	false	"Page size, default 20, max 100"
//	@Success		200			{object}	backofficesdk.UsersPageResponse
//	@Failure		401			{object}	backofficesdk.ErrorResponse	"Missing or invalid session"
//	@Failure		403			{object}	backofficesdk.ErrorResponse	"Not an admin"
//	@Security		BearerAuth
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	p, err := h.UserService.List(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := backofficesdk.UsersPageResponse{
		Users:   make([]backofficesdk.UserResponse, 0, len(p.Items)),
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
	}
	for _, u := range p.Items {
		resp.Users = append(resp.Users, toUser(u))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
