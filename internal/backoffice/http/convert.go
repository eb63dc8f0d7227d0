package http

import (
	"net/http"
	"strconv"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/pkg/backofficesdk"
)

func toRoles(s domain.RoleSet) backofficesdk.RolesResponse {
	return backofficesdk.RolesResponse{
		Admin:          s.Admin(),
		Manager:        s.Manager(),
		GeneralManager: s.GeneralManager(),
	}
}

func toUser(u domain.User) backofficesdk.UserResponse {
	return backofficesdk.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     toRoles(u.Roles),
		CreatedAt: u.CreatedAt,
	}
}

func toRoleChange(c service.RoleChange) backofficesdk.RoleChangeResponse {
	out := backofficesdk.RoleChangeResponse{
		UserID:  c.Target.ID,
		Role:    c.Role.String(),
		From:    c.From,
		To:      c.To,
		Changed: c.Changed,
		Roles:   toRoles(c.Target.Roles),
	}
	if c.Entry != nil {
		out.AuditID = c.Entry.ID
	}
	return out
}

func toInviteSummary(v service.InviteView) backofficesdk.InviteSummary {
	return backofficesdk.InviteSummary{
		ID:         v.ID,
		State:      string(v.State),
		CreatedBy:  v.CreatedBy,
		CreatedAt:  v.CreatedAt,
		ExpiresAt:  v.ExpiresAt,
		ConsumedBy: v.ConsumedBy,
		ConsumedAt: v.ConsumedAt,
	}
}

func toAuditEntry(e domain.AuditEntry) backofficesdk.AuditEntryResponse {
	return backofficesdk.AuditEntryResponse{
		ID:        e.ID,
		Action:    string(e.Action),
		ActorID:   e.ActorID,
		SubjectID: e.SubjectID,
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt,
	}
}

// pageParams reads ?page= and ?per_page=. Garbage falls back to zero and
// the service applies its defaults.
func pageParams(r *http.Request) (page, perPage int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	perPage, _ = strconv.Atoi(q.Get("per_page"))
	return page, perPage
}
