package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/pkg/backofficesdk"
	"github.com/elmagroup/backoffice/pkg/httpx"
)

type InvitesHandler struct {
	InviteService *service.InviteService
}

// HandleIssue mints a single-use admin invite.
//
//	@Summary		Issue admin invite
//	@Description	Requires general manager. The token is returned once and cannot be retrieved later.
//	@Tags			Invitations
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			expiry_hours	formData	int	false	"Validity in hours, default 24"
//	@Success		201				{object}	backofficesdk.InviteResponse
//	@Failure		400				{object}	backofficesdk.ErrorResponse	"expiry_hours out of range"
//	@Failure		403				{object}	backofficesdk.ErrorResponse	"Not a general manager"
//	@Security		BearerAuth
//	@Router			/v1/invites [post].
func (h *InvitesHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "Invalid form data")
		return
	}

	hours := h.InviteService.DefaultExpiry()
	if raw := strings.TrimSpace(r.PostFormValue("expiry_hours")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "expiry_hours must be a whole number")
			return
		}
		hours = n
	}

	issuerID, _ := httpx.UserIDFromContext(r.Context())
	token, invite, err := h.InviteService.IssueToken(r.Context(), issuerID, hours)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, backofficesdk.InviteResponse{
		ID:        invite.ID,
		Token:     token,
		ExpiresAt: invite.ExpiresAt,
	})
}

// HandleList returns invites newest first without their tokens.
//
//	@Summary		List invites
//	@Description	Requires general manager.
//	@Tags			Invitations
//	@Produce		json
//	@Param			page		query		int	false	"Page number, from 1"
//	@Param			per_page	query		int	false	"Page size, default 30, max 100"
//	@Success		200			{object}	backofficesdk.InvitesPageResponse
//	@Failure		403			{object}	backofficesdk.ErrorResponse	"Not a general manager"
//	@Security		BearerAuth
//	@Router			/v1/invites [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	p, err := h.InviteService.ListInvites(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := backofficesdk.InvitesPageResponse{
		Invites: make([]backofficesdk.InviteSummary, 0, len(p.Items)),
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
	}
	for _, v := range p.Items {
		resp.Invites = append(resp.Invites, toInviteSummary(v))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleSend issues an invite and emails it.
//
//	@Summary		Email admin invite
//	@Description	Requires general manager. The invite is created even when delivery fails; check delivered.
//	@Tags			Invitations
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			email	formData	string	true	"Recipient"
//	@Success		201		{object}	backofficesdk.SendInviteResponse
//	@Failure		400		{object}	backofficesdk.ErrorResponse	"Invalid email"
//	@Failure		403		{object}	backofficesdk.ErrorResponse	"Not a general manager"
//	@Security		BearerAuth
//	@Router			/v1/invites/send [post].
func (h *InvitesHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "Invalid form data")
		return
	}
	email := r.PostFormValue("email")
	if email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	issuerID, _ := httpx.UserIDFromContext(r.Context())
	res, err := h.InviteService.SendInvite(r.Context(), issuerID, email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, backofficesdk.SendInviteResponse{
		ID:        res.Invite.ID,
		ExpiresAt: res.Invite.ExpiresAt,
		Delivered: res.Delivered,
	})
}

// HandleRedeem grants admin to the caller in exchange for an invite token.
//
//	@Summary		Redeem admin invite
//	@Description	Consumes the token and grants admin to the caller. A caller who is already an admin gets a no-op and the token stays usable.
//	@Tags			Invitations
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			token	formData	string	true	"Invite token"
//	@Success		200		{object}	backofficesdk.RedeemInviteResponse
//	@Failure		400		{object}	backofficesdk.ErrorResponse	"Token used or expired"
//	@Failure		404		{object}	backofficesdk.ErrorResponse	"Unknown token"
//	@Failure		429		{object}	backofficesdk.ErrorResponse	"Too many attempts"
//	@Security		BearerAuth
//	@Router			/v1/invites/redeem [post].
func (h *InvitesHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "Invalid form data")
		return
	}
	token := r.PostFormValue("token")
	if token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	userID, _ := httpx.UserIDFromContext(r.Context())
	res, err := h.InviteService.Redeem(r.Context(), token, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, backofficesdk.RedeemInviteResponse{
		UserID:       userID,
		Admin:        true,
		AlreadyAdmin: res.AlreadyAdmin,
	})
}
