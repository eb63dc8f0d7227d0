package backofficesdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Session is an authenticated view of the API.
type Session struct {
	client    *Client
	token     string
	expiresAt time.Time

	// User is the account the session was opened for, as of login.
	User UserResponse
}

// NewSession wraps an existing bearer token, e.g. one kept from an earlier
// login.
func NewSession(c *Client, token string, expiresIn int, user UserResponse) *Session {
	return &Session{
		client:    c,
		token:     token,
		expiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
		User:      user,
	}
}

// Token returns the bearer token.
func (s *Session) Token() string { return s.token }

// ExpiresAt is the client-side estimate of when the token stops working.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// Me returns the caller's account and current roles.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/users/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var ur UserResponse
	if err := decodeJSON(resp, &ur, http.StatusOK); err != nil {
		return nil, err
	}
	return &ur, nil
}

// ListUsers returns one page of users. Requires admin.
func (s *Session) ListUsers(ctx context.Context, page int) (*UsersPageResponse, error) {
	var out UsersPageResponse
	if err := s.getPage(ctx, "/v1/users", page, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetRole grants or revokes one role on another user.
func (s *Session) SetRole(ctx context.Context, userID, role string, grant bool) (*RoleChangeResponse, error) {
	form := url.Values{}
	form.Set("grant", strconv.FormatBool(grant))
	return s.postRoleChange(ctx, "/v1/users/"+url.PathEscape(userID)+"/roles/"+url.PathEscape(role), form)
}

// ToggleRole flips one role on another user.
func (s *Session) ToggleRole(ctx context.Context, userID, role string) (*RoleChangeResponse, error) {
	return s.postRoleChange(ctx, "/v1/users/"+url.PathEscape(userID)+"/roles/"+url.PathEscape(role)+"/toggle", url.Values{})
}

// PromoteAdmin grants admin to the user registered under email. Requires
// general manager.
func (s *Session) PromoteAdmin(ctx context.Context, email string) (*RoleChangeResponse, error) {
	form := url.Values{}
	form.Set("email", email)
	return s.postRoleChange(ctx, "/v1/admins/promote", form)
}

func (s *Session) postRoleChange(ctx context.Context, path string, form url.Values) (*RoleChangeResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), formHeaders)
	if err != nil {
		return nil, err
	}

	var rc RoleChangeResponse
	if err := decodeJSON(resp, &rc, http.StatusOK); err != nil {
		return nil, err
	}
	return &rc, nil
}

// IssueInvite creates an admin invite valid for expiryHours. Requires
// general manager. The returned token is shown only once.
func (s *Session) IssueInvite(ctx context.Context, expiryHours int) (*InviteResponse, error) {
	form := url.Values{}
	form.Set("expiry_hours", strconv.Itoa(expiryHours))

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/invites", strings.NewReader(form.Encode()), formHeaders)
	if err != nil {
		return nil, err
	}

	var ir InviteResponse
	if err := decodeJSON(resp, &ir, http.StatusCreated); err != nil {
		return nil, err
	}
	return &ir, nil
}

// ListInvites returns one page of invites, newest first. Requires general
// manager.
func (s *Session) ListInvites(ctx context.Context, page int) (*InvitesPageResponse, error) {
	var out InvitesPageResponse
	if err := s.getPage(ctx, "/v1/invites", page, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendInvite issues an invite and emails it to email. Requires general
// manager.
func (s *Session) SendInvite(ctx context.Context, email string) (*SendInviteResponse, error) {
	form := url.Values{}
	form.Set("email", email)

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/invites/send", strings.NewReader(form.Encode()), formHeaders)
	if err != nil {
		return nil, err
	}

	var sr SendInviteResponse
	if err := decodeJSON(resp, &sr, http.StatusCreated); err != nil {
		return nil, err
	}
	return &sr, nil
}

// RedeemInvite redeems token for the session's own account.
func (s *Session) RedeemInvite(ctx context.Context, token string) (*RedeemInviteResponse, error) {
	form := url.Values{}
	form.Set("token", token)

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/invites/redeem", strings.NewReader(form.Encode()), formHeaders)
	if err != nil {
		return nil, err
	}

	var rr RedeemInviteResponse
	if err := decodeJSON(resp, &rr, http.StatusOK); err != nil {
		return nil, err
	}
	return &rr, nil
}

// AuditLog returns one page of the audit log, newest first. Requires
// general manager.
func (s *Session) AuditLog(ctx context.Context, page int) (*AuditPageResponse, error) {
	var out AuditPageResponse
	if err := s.getPage(ctx, "/v1/audit", page, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserAudit returns every audit entry whose subject is userID, newest
// first. Requires general manager.
func (s *Session) UserAudit(ctx context.Context, userID string) (*UserAuditResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/audit", nil, nil)
	if err != nil {
		return nil, err
	}

	var out UserAuditResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) getPage(ctx context.Context, path string, page int, target any) error {
	if page > 0 {
		path += "?page=" + strconv.Itoa(page)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}
