package user

const (
	RolePlayer  = "player"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Principal identifies the authenticated caller of a request.
type Principal struct {
	ID   string
	Name string
	Role string
}

// CanModerate reports whether the role carries competition moderator rights.
func CanModerate(role string) bool {
	return role == RoleManager || role == RoleAdmin
}
