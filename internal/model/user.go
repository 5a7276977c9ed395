package model

// User represents an application user document stored in the `users`
// collection. Users are never hard-deleted; administrative removal flips
// them out of the active list instead.
//
// Fields:
//  ID       – stable identifier (UUID).
//  Name     – display name.
//  Role     – one of Director, Librarian or Musician. Exactly one role per
//             user; the role gates administrative capabilities.
//  Email    – login email, stored lowercased.
//  Password – bcrypt hash of the password. Omitted from JSON when empty so
//             profile documents cached client-side stay free of hashes.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// Roles form a closed set. The first user to register becomes Director;
// everyone after that starts as Musician until a Director promotes them.
const (
	RoleDirector  = "Director"
	RoleLibrarian = "Librarian"
	RoleMusician  = "Musician"
)

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleDirector, RoleLibrarian, RoleMusician:
		return true
	}
	return false
}

// Sanitized returns a copy of the user with the password hash stripped,
// suitable for API responses and the profile cache.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
