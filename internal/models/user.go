package models

// User is the identity resolved for a request. It mirrors the client
// principal object a static-web-apps front door forwards.
type User struct {
	UserID           string   `json:"userId"`
	UserDetails      string   `json:"userDetails"`
	UserRoles        []string `json:"userRoles"`
	Claims           []any    `json:"claims"`
	IdentityProvider string   `json:"identityProvider"`
}

// HasRole reports whether the user carries role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

// DemoUser returns the fixed identity used when no credentials are present.
func DemoUser() *User {
	return &User{
		UserID:           "demo-user",
		UserDetails:      "demo@example.com",
		UserRoles:        []string{"authenticated"},
		Claims:           []any{},
		IdentityProvider: "demo",
	}
}
