package domain

import "time"

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanHandle reports whether the role may accept or reject requests.
func (r Role) CanHandle() bool {
	return r == RoleManager || r == RoleAdmin
}

// User models a registered account. Roles and names never change after creation.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor returns the identity the lifecycle rules are evaluated against.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Actor is the user attempting an operation.
type Actor struct {
	ID   string
	Name string
	Role Role
}
