// Package access decides whether a request may reach a protected view.
package access

// Identity is what the identity service reports for a session.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Admin  bool   `json:"admin"`
}

// RoleAdmin is the role claim that marks an administrator.
const RoleAdmin = "admin"

// Role returns the role claim for the identity.
func (id Identity) Role() string {
	if id.Admin {
		return RoleAdmin
	}
	return "user"
}

type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// Decide gates a view. A nil identity means nobody is signed in.
func Decide(id *Identity, requireAdmin bool) Decision {
	switch {
	case id == nil:
		return RedirectToLogin
	case !requireAdmin:
		return Allow
	case id.Admin:
		return Allow
	default:
		return Deny
	}
}
