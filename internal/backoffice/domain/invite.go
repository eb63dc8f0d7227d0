package domain

import "time"

// InviteState is derived, never stored. Consumed and Expired are terminal.
type InviteState string

const (
	InviteActive   InviteState = "active"
	InviteConsumed InviteState = "consumed"
	InviteExpired  InviteState = "expired"
)

// InviteToken is a single-use admin invitation. Only the SHA-256
// fingerprint of the bearer string is kept.
type InviteToken struct {
	ID         string
	TokenHash  string
	CreatedBy  string // empty when issued by the system
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Consumed   bool
	ConsumedBy string
	ConsumedAt *time.Time
}

// ValidAt reports whether the invite can still be redeemed at now. An
// invite expires at exactly ExpiresAt.
func (i InviteToken) ValidAt(now time.Time) bool {
	return !i.Consumed && now.Before(i.ExpiresAt)
}

// State evaluates expiry lazily. A consumed invite stays consumed after its
// expiry time passes.
func (i InviteToken) State(now time.Time) InviteState {
	switch {
	case i.Consumed:
		return InviteConsumed
	case !now.Before(i.ExpiresAt):
		return InviteExpired
	default:
		return InviteActive
	}
}
