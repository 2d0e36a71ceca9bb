package domain

import "time"

// Session is the authenticated identity attached to a single call. It is
// decoded from a bearer token and passed explicitly to every service method
// that acts on behalf of a user.
type Session struct {
	UserID    string
	Name      string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// Actor returns the session identity as an Actor.
func (s Session) Actor() Actor {
	return Actor{ID: s.UserID, Name: s.Name, Role: s.Role}
}
