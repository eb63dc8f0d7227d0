package domain

import (
	"errors"
	"strings"
)

// Role is one of the independent back-office privilege flags.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleManager        Role = "manager"
	RoleGeneralManager Role = "general_manager"
)

var ErrUnknownRole = errors.New("unknown role")

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleManager, RoleGeneralManager}

// ParseRole accepts the canonical names plus "general-manager" and "gm".
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "manager":
		return RoleManager, nil
	case "general_manager", "general-manager", "gm":
		return RoleGeneralManager, nil
	}
	return "", ErrUnknownRole
}

func (r Role) String() string { return string(r) }

// Label is the human form used in audit details.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleManager:
		return "Manager"
	case RoleGeneralManager:
		return "General Manager"
	}
	return string(r)
}

// RoleSet holds a user's privilege flags. The zero value grants nothing.
// Flags are independent: holding general_manager implies neither admin nor
// manager.
type RoleSet struct {
	admin          bool
	manager        bool
	generalManager bool
}

// NewRoleSet builds a set from explicit flags. Only the store drivers and
// bootstrap use it; everything else derives sets via With.
func NewRoleSet(admin, manager, generalManager bool) RoleSet {
	return RoleSet{admin: admin, manager: manager, generalManager: generalManager}
}

func (s RoleSet) Admin() bool          { return s.admin }
func (s RoleSet) Manager() bool        { return s.manager }
func (s RoleSet) GeneralManager() bool { return s.generalManager }

// Has reports whether r is held. Unknown roles are never held.
func (s RoleSet) Has(r Role) bool {
	switch r {
	case RoleAdmin:
		return s.admin
	case RoleManager:
		return s.manager
	case RoleGeneralManager:
		return s.generalManager
	}
	return false
}

// With returns a copy of s with r set to v.
func (s RoleSet) With(r Role, v bool) RoleSet {
	switch r {
	case RoleAdmin:
		s.admin = v
	case RoleManager:
		s.manager = v
	case RoleGeneralManager:
		s.generalManager = v
	}
	return s
}

// RequiredActorRole is the role an actor must hold to change r on someone
// else. Only a general manager may change general-manager status; admin
// and manager status are controlled by admins.
func RequiredActorRole(r Role) Role {
	if r == RoleGeneralManager {
		return RoleGeneralManager
	}
	return RoleAdmin
}
