package workflow

import "github.com/google/uuid"

// Role is the single tag classifying what approval actions a user may perform.
type Role string

const (
	RoleManagement            Role = "management"
	RoleSalesManager          Role = "sales_manager"
	RoleFinanceManager        Role = "finance_manager"
	RoleFactoryPlanner        Role = "factory_planner"
	RoleFactoryManager        Role = "factory_manager"
	RoleAdministrativeOfficer Role = "administrative_officer"
)

// Roles lists every assignable role tag.
var Roles = []Role{
	RoleManagement,
	RoleSalesManager,
	RoleFinanceManager,
	RoleFactoryPlanner,
	RoleFactoryManager,
	RoleAdministrativeOfficer,
}

// ParseRole maps a stored role tag to a Role. The second return value is
// false for unknown or empty tags: such an actor has no role and is treated
// as read-only everywhere. Callers must handle the no-role case explicitly.
func ParseRole(tag string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == tag {
			return r, true
		}
	}
	return "", false
}

// Actor is the authenticated party attempting an operation. HasRole is false
// when the user carries no recognized role tag. Reverified is set by the
// password re-verification middleware; gated operations require it.
type Actor struct {
	ID         uuid.UUID
	Role       Role
	HasRole    bool
	Reverified bool
}

// Is reports whether the actor holds the given role.
func (a Actor) Is(r Role) bool {
	return a.HasRole && a.Role == r
}

// IsAny reports whether the actor holds any of the given roles.
func (a Actor) IsAny(roles ...Role) bool {
	if !a.HasRole {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
