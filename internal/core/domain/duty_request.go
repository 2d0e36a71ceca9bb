package domain

import "time"

// Shift is the part of the day a duty request covers.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftNight     Shift = "night"
)

// ParseShift maps s onto a known shift, falling back to ShiftMorning.
func ParseShift(s string) Shift {
	switch Shift(s) {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return Shift(s)
	}
	return ShiftMorning
}

// RequestStatus represents the lifecycle state of a duty request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
	StatusRevoked  RequestStatus = "revoked"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusRevoked:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusRevoked
}

// Action is a lifecycle transition requested by an actor.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
	ActionRevoke Action = "revoke"
)

// Actions lists every transition action in display order.
var Actions = []Action{ActionAccept, ActionReject, ActionRevoke}

// transitions maps each action to its source and target status.
var transitions = map[Action]struct{ from, to RequestStatus }{
	ActionAccept: {StatusPending, StatusAccepted},
	ActionReject: {StatusPending, StatusRejected},
	ActionRevoke: {StatusPending, StatusRevoked},
}

// Source returns the status a request must hold for the action to apply.
func (a Action) Source() (RequestStatus, bool) {
	t, ok := transitions[a]
	return t.from, ok
}

// Target returns the status a request moves to once the action is applied.
func (a Action) Target() (RequestStatus, bool) {
	t, ok := transitions[a]
	return t.to, ok
}

// DutyRequest is a user's request to be on duty for a given date and shift.
// UserName is a snapshot taken when the request is created.
type DutyRequest struct {
	ID        string        `json:"id" bson:"_id"`
	UserID    string        `json:"user_id" bson:"user_id"`
	UserName  string        `json:"user_name" bson:"user_name"`
	Date      string        `json:"date" bson:"date"`
	Shift     Shift         `json:"shift" bson:"shift"`
	Reason    string        `json:"reason" bson:"reason"`
	Status    RequestStatus `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	HandledBy *string       `json:"handled_by" bson:"handled_by"`
	HandledAt *time.Time    `json:"handled_at" bson:"handled_at"`
}

// NewRequest carries the user-supplied fields of a duty request.
type NewRequest struct {
	Date   string
	Shift  string
	Reason string
}
