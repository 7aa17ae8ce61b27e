package model

import "strings"

// User is the profile of the logged-in account as returned by /api/auth/me.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Username is the writer's pen name.
	Username string `json:"username"`

	// Role is "reader", "writer" or "admin".
	Role string `json:"role"`
}

// DisplayName returns the pen name, falling back to the full name.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
