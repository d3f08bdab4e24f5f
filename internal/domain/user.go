package domain

import "time"

// User role constants.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User status constants.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a registered storefront user.
type User struct {
	ID           int        `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Phone        string     `json:"phone,omitempty"`
	Address      *Address   `json:"address,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
