package domain

import "strings"

type ActorRole string

const (
	RoleAdmin    ActorRole = "admin"
	RoleReviewer ActorRole = "reviewer"
	RoleManager  ActorRole = "manager"
	RoleEmployee ActorRole = "employee"
	RoleSystem   ActorRole = "system"
)

// Actor identifies who issues a command. Authentication happens upstream; the
// engine trusts the asserted role for its guards and records the ID for audit.
type Actor struct {
	ID       string
	Role     ActorRole
	Location string
}

// SystemActor authors transitions the engine makes on its own (escalations,
// renewals, auto-assignment).
var SystemActor = Actor{ID: "system", Role: RoleSystem}

func (a Actor) CanReview() bool {
	return a.Role == RoleReviewer || a.Role == RoleAdmin
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

// ParseActorRole maps a user-supplied role string onto a known role.
func ParseActorRole(s string) (ActorRole, bool) {
	switch r := ActorRole(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleReviewer, RoleManager, RoleEmployee:
		return r, true
	default:
		return "", false
	}
}
