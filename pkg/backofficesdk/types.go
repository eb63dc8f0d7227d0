package backofficesdk

import "time"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is a machine-readable code such as "invalid_token"
	Error string `json:"error"`

	// ErrorDescription is a human-readable message
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ============================================================================
// Users and sessions
// ============================================================================

// RolesResponse lists a user's privilege flags.
type RolesResponse struct {
	Admin          bool `json:"admin"`
	Manager        bool `json:"manager"`
	GeneralManager bool `json:"general_manager"`
}

type UserResponse struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Roles     RolesResponse `json:"roles"`
	CreatedAt time.Time     `json:"created_at"`
}

type UsersPageResponse struct {
	Users   []UserResponse `json:"users"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int            `json:"total"`
}

// SessionResponse is returned by POST /v1/sessions.
type SessionResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// ============================================================================
// Roles
// ============================================================================

type RoleChangeResponse struct {
	UserID  string        `json:"user_id"`
	Role    string        `json:"role"`
	From    bool          `json:"from"`
	To      bool          `json:"to"`
	Changed bool          `json:"changed"`
	Roles   RolesResponse `json:"roles"`
	AuditID string        `json:"audit_id,omitempty"`
}

// ============================================================================
// Invites
// ============================================================================

// InviteResponse is returned once, when an invite is issued. Token is never
// shown again.
type InviteResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type InviteSummary struct {
	ID         string     `json:"id"`
	State      string     `json:"state"`
	CreatedBy  string     `json:"created_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedBy string     `json:"consumed_by,omitempty"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

type InvitesPageResponse struct {
	Invites []InviteSummary `json:"invites"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Total   int             `json:"total"`
}

type SendInviteResponse struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	Delivered bool      `json:"delivered"`
}

type RedeemInviteResponse struct {
	UserID       string `json:"user_id"`
	Admin        bool   `json:"admin"`
	AlreadyAdmin bool   `json:"already_admin"`
}

// ============================================================================
// Audit
// ============================================================================

type AuditEntryResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	SubjectID string    `json:"subject_id"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditPageResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"per_page"`
	Total   int                  `json:"total"`
}

type UserAuditResponse struct {
	UserID  string               `json:"user_id"`
	Entries []AuditEntryResponse `json:"entries"`
}

// ============================================================================
// Bootstrap
// ============================================================================

type BootstrapResponse struct {
	UserID string `json:"user_id"`
}

// BootstrapRequest is the JSON body of POST /v1/bootstrap. The bootstrap
// token travels in the X-Bootstrap-Token header.
type BootstrapRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the JSON body of POST /v1/users.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
