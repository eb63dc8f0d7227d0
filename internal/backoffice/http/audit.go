package http

import (
	"net/http"

	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/pkg/backofficesdk"
	"github.com/elmagroup/backoffice/pkg/httpx"
)

type AuditHandler struct {
	Audit *service.AuditLogger
}

// ServeHTTP lists privilege changes newest first.
//
//	@Summary		Audit log
//	@Description	Requires general manager.
//	@Tags			Audit
//	@Produce		json
//	@Param			page		query		int	false	"Page number, from 1"
//	@Param			per_page	query		int	false	"Page size, default 30, max 100"
//	@Success		200			{object}	backofficesdk.AuditPageResponse
//	@Failure		403			{object}	backofficesdk.ErrorResponse	"Not a general manager"
//	@Security		BearerAuth
//	@Router			/v1/audit [get].
func (h *AuditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	p, err := h.Audit.List(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := backofficesdk.AuditPageResponse{
		Entries: make([]backofficesdk.AuditEntryResponse, 0, len(p.Items)),
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
	}
	for _, e := range p.Items {
		resp.Entries = append(resp.Entries, toAuditEntry(e))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleSubject lists every privilege change made to one user.
//
//	@Summary		Audit history of a user
//	@Description	Requires general manager. Entries are newest first.
//	@Tags			Audit
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	backofficesdk.UserAuditResponse
//	@Failure		403	{object}	backofficesdk.ErrorResponse	"Not a general manager"
//	@Failure		404	{object}	backofficesdk.ErrorResponse	"Unknown user"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/audit [get].
func (h *AuditHandler) HandleSubject(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	entries, err := h.Audit.ListForSubject(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := backofficesdk.UserAuditResponse{
		UserID:  userID,
		Entries: make([]backofficesdk.AuditEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toAuditEntry(e))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
