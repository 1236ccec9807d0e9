// AngelaMos | 2026
// actor.go

package core

const (
	RoleAdmin      = "Admin"
	RoleInstructor = "Instructor"
	RoleStudent    = "Student"
)

// Actor is the authenticated caller as seen by the service layer. The zero
// value is an anonymous caller.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsInstructor() bool {
	return a.Role == RoleInstructor
}

func (a Actor) IsAnonymous() bool {
	return a.UserID == 0
}

// CanManage reports whether the caller owns a resource or is an admin.
func (a Actor) CanManage(ownerID int64) bool {
	return a.IsAdmin() || (!a.IsAnonymous() && a.UserID == ownerID)
}
