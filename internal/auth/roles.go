package auth

// Role is the closed set of account roles
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole maps a stored role string to a Role. Anything that is not
// exactly ADMIN resolves to USER so an unknown or corrupted value can
// never grant elevated access.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// IsAdmin reports whether the role grants administrative access
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
