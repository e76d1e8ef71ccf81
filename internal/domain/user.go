package domain

import "time"

// Role gates access to the admin-only account removal route.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account. Usernames are stored lower-cased so
// lookups and uniqueness checks are case-insensitive.
type User struct {
	ID                  int64
	Name                string
	Username            string
	Email               string
	PasswordHash        string
	Bio                 string
	Location            string
	Contact             string
	Avatar              string
	Role                Role
	LastSeen            time.Time
	LastMessageReadTime *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsAdmin reports whether the user may perform admin-only operations.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
