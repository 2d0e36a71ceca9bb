package domain

import "time"

// EventAction names an entry in a request's history.
type EventAction string

const (
	EventCreated  EventAction = "create"
	EventAccepted EventAction = "accept"
	EventRejected EventAction = "reject"
	EventRevoked  EventAction = "revoke"
	EventDeleted  EventAction = "delete"
)

// RequestEvent records a single lifecycle change on a duty request.
type RequestEvent struct {
	RequestID string        `json:"request_id" bson:"request_id"`
	Action    EventAction   `json:"action" bson:"action"`
	ActorID   string        `json:"actor_id" bson:"actor_id"`
	ActorName string        `json:"actor_name" bson:"actor_name"`
	Status    RequestStatus `json:"status" bson:"status"`
	At        time.Time     `json:"at" bson:"at"`
}
