package domain

import (
	"fmt"
	"time"
)

type AuditAction string

const (
	ActionPromoteAdmin          AuditAction = "promote_admin"
	ActionDemoteAdmin           AuditAction = "demote_admin"
	ActionPromoteManager        AuditAction = "promote_manager"
	ActionDemoteManager         AuditAction = "demote_manager"
	ActionPromoteGeneralManager AuditAction = "promote_general_manager"
	ActionDemoteGeneralManager  AuditAction = "demote_general_manager"
)

// ActionFor maps a flag change to its audit action.
func ActionFor(r Role, grant bool) AuditAction {
	verb := "demote_"
	if grant {
		verb = "promote_"
	}
	return AuditAction(verb + string(r))
}

// Valid reports whether a is one of the known actions.
func (a AuditAction) Valid() bool {
	switch a {
	case ActionPromoteAdmin, ActionDemoteAdmin,
		ActionPromoteManager, ActionDemoteManager,
		ActionPromoteGeneralManager, ActionDemoteGeneralManager:
		return true
	}
	return false
}

// AuditEntry is an immutable record of one privilege change.
type AuditEntry struct {
	ID        string
	Action    AuditAction
	ActorID   string
	SubjectID string
	Detail    string
	CreatedAt time.Time
}

// RoleChangeDetail renders the old and new value of a flag,
// e.g. "Admin status changed from false to true".
func RoleChangeDetail(r Role, from, to bool) string {
	return fmt.Sprintf("%s status changed from %t to %t", r.Label(), from, to)
}
