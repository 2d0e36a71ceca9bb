package lifecycle

import (
	"fmt"

	"github.com/onduty/roster/internal/core/domain"
)

// Check is the single source of truth for transition permissions. The
// source state is checked before the actor, so any action on a handled
// request reports ErrInvalidTransition.
func Check(actor domain.Actor, req domain.DutyRequest, action domain.Action) error {
	from, ok := action.Source()
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAction, action)
	}
	if req.Status != from {
		return fmt.Errorf("%w: cannot %s a %s request", domain.ErrInvalidTransition, action, req.Status)
	}

	switch action {
	case domain.ActionAccept, domain.ActionReject:
		if !actor.Role.CanHandle() {
			return fmt.Errorf("%w: %s requires a manager or admin", domain.ErrUnauthorized, action)
		}
	case domain.ActionRevoke:
		if !owns(actor, req) {
			return fmt.Errorf("%w: only the owner may revoke a request", domain.ErrUnauthorized)
		}
	}
	return nil
}

// Authorize reports whether actor may apply action to req right now.
func Authorize(actor domain.Actor, req domain.DutyRequest, action domain.Action) bool {
	return Check(actor, req, action) == nil
}

// Permitted lists the actions actor may currently apply to req.
func Permitted(actor domain.Actor, req domain.DutyRequest) []domain.Action {
	allowed := make([]domain.Action, 0, len(domain.Actions))
	for _, a := range domain.Actions {
		if Authorize(actor, req, a) {
			allowed = append(allowed, a)
		}
	}
	return allowed
}

func owns(actor domain.Actor, req domain.DutyRequest) bool {
	return actor.ID != "" && actor.ID == req.UserID
}

// CanViewAll reports whether actor may list every user's requests.
func CanViewAll(actor domain.Actor) bool {
	return actor.Role.CanHandle()
}

// CanView reports whether actor may read req and its history.
func CanView(actor domain.Actor, req domain.DutyRequest) bool {
	return owns(actor, req) || CanViewAll(actor)
}

// CanDelete reports whether actor may delete req. Deletion is allowed in
// any status.
func CanDelete(actor domain.Actor, req domain.DutyRequest) bool {
	return owns(actor, req) || actor.Role.CanHandle()
}
