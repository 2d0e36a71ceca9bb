// Package lifecycle holds the duty request state machine and the rules that
// decide which actor may drive it. Everything here is pure: no storage, no
// logging, no I/O. Callers persist the records it returns.
package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onduty/roster/internal/core/domain"
)

// Engine creates and transitions duty requests.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for CreatedAt and HandledAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how request IDs are assigned.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now reports the engine's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Create builds a new pending request owned by owner. An unknown shift
// falls back to morning.
func (e *Engine) Create(owner domain.Actor, in domain.NewRequest) (domain.DutyRequest, error) {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		return domain.DutyRequest{}, &domain.ValidationError{Field: "date"}
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return domain.DutyRequest{}, &domain.ValidationError{Field: "reason"}
	}

	return domain.DutyRequest{
		ID:        e.newID(),
		UserID:    owner.ID,
		UserName:  owner.Name,
		Date:      date,
		Shift:     domain.ParseShift(strings.TrimSpace(in.Shift)),
		Reason:    reason,
		Status:    domain.StatusPending,
		CreatedAt: e.now(),
	}, nil
}

// Transition applies action to req on behalf of actor and returns the
// updated copy. req itself is never modified, so a rejected transition
// leaves the caller's record untouched.
func (e *Engine) Transition(req domain.DutyRequest, actor domain.Actor, action domain.Action) (domain.DutyRequest, error) {
	if err := Check(actor, req, action); err != nil {
		return req, err
	}

	target, _ := action.Target()
	handledBy := actor.Name
	handledAt := e.now()

	next := req
	next.Status = target
	next.HandledBy = &handledBy
	next.HandledAt = &handledAt
	return next, nil
}
