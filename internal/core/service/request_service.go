package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onduty/roster/internal/core/domain"
	"github.com/onduty/roster/internal/core/lifecycle"
	"github.com/onduty/roster/internal/core/ports"
)

// EventPublisher hands request history entries to the audit pipeline.
type EventPublisher interface {
	Enqueue(event domain.RequestEvent)
}

// RequestService runs duty request use cases against the lifecycle engine
// and the configured repositories.
type RequestService struct {
	requests ports.RequestRepository
	users    ports.UserRepository
	audit    ports.AuditRepository
	events   EventPublisher
	engine   *lifecycle.Engine
	log      zerolog.Logger
}

func NewRequestService(
	requests ports.RequestRepository,
	users ports.UserRepository,
	audit ports.AuditRepository,
	events EventPublisher,
	engine *lifecycle.Engine,
	log zerolog.Logger,
) *RequestService {
	if engine == nil {
		engine = lifecycle.New()
	}
	return &RequestService{
		requests: requests,
		users:    users,
		audit:    audit,
		events:   events,
		engine:   engine,
		log:      log,
	}
}

// Create files a new pending request for the session's user.
func (s *RequestService) Create(ctx context.Context, session domain.Session, in domain.NewRequest) (*domain.DutyRequest, error) {
	actor, err := s.resolveActor(ctx, session)
	if err != nil {
		return nil, err
	}

	req, err := s.engine.Create(actor, in)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, &req); err != nil {
		s.log.Error().Err(err).Str("user_id", actor.ID).Msg("failed to create request")
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.publish(req, domain.EventCreated, actor)
	s.log.Info().
		Str("request_id", req.ID).
		Str("user_id", actor.ID).
		Str("shift", string(req.Shift)).
		Msg("request created")
	return &req, nil
}

// Get returns a request visible to the session's user.
func (s *RequestService) Get(ctx context.Context, session domain.Session, id string) (*domain.DutyRequest, error) {
	actor, err := s.resolveActor(ctx, session)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanView(actor, *req) {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

// List returns the session user's own requests, or every request when the
// user is a manager or admin.
func (s *RequestService) List(ctx context.Context, session domain.Session, in ports.ListRequestsInput) ([]*domain.DutyRequest, error) {
	actor, err := s.resolveActor(ctx, session)
	if err != nil {
		return nil, err
	}

	filter := ports.ListRequestsFilter{}
	if in.Status != "" && in.Status != "all" {
		status := domain.RequestStatus(in.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, in.Status)
		}
		filter.Status = status
	}
	if !lifecycle.CanViewAll(actor) {
		filter.UserID = actor.ID
	}

	return s.requests.List(ctx, filter)
}

// Transition applies action to the request. The write is conditional on the
// request still being in the status it was read in, so concurrent handlers
// resolve first-wins.
func (s *RequestService) Transition(ctx context.Context, session domain.Session, id string, action domain.Action) (*domain.DutyRequest, error) {
	actor, err := s.resolveActor(ctx, session)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := s.engine.Transition(*req, actor, action)
	if err != nil {
		return nil, err
	}

	if err := s.requests.CompareAndSwapStatus(ctx, &next, req.Status); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			s.log.Info().Str("request_id", id).Str("action", string(action)).Msg("transition lost race")
		}
		return nil, err
	}

	s.publish(next, domain.EventAction(action), actor)
	s.log.Info().
		Str("request_id", id).
		Str("action", string(action)).
		Str("actor_id", actor.ID).
		Str("status", string(next.Status)).
		Msg("request transitioned")
	return &next, nil
}

// Permitted lists the transitions the session's user may currently apply.
func (s *RequestService) Permitted(ctx context.Context, session domain.Session, id string) ([]domain.Action, error) {
	actor, err := s.resolveActor(ctx, session)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanView(actor, *req) {
		return nil, domain.ErrForbidden
	}
	return lifecycle.Permitted(actor, *req), nil
}

// History returns the recorded lifecycle events of a request. Entries are
// recorded asynchronously and may briefly lag the request itself.
func (s *RequestService) History(ctx context.Context, session domain.Session, id string) ([]*domain.RequestEvent, error) {
	if _, err := s.Get(ctx, session, id); err != nil {
		return nil, err
	}
	return s.audit.ListByRequest(ctx, id)
}

// Delete removes a request. Owners and managers/admins may delete in any status.
func (s *RequestService) Delete(ctx context.Context, session domain.Session, id string) error {
	actor, err := s.resolveActor(ctx, session)
	if err != nil {
		return err
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !lifecycle.CanDelete(actor, *req) {
		return domain.ErrUnauthorized
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(*req, domain.EventDeleted, actor)
	s.log.Info().Str("request_id", id).Str("actor_id", actor.ID).Msg("request deleted")
	return nil
}

// resolveActor reloads the session's user so roles come from the identity
// store and deleted accounts can no longer act.
func (s *RequestService) resolveActor(ctx context.Context, session domain.Session) (domain.Actor, error) {
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Actor{}, domain.ErrSessionRevoked
		}
		return domain.Actor{}, err
	}
	return user.Actor(), nil
}

func (s *RequestService) publish(req domain.DutyRequest, action domain.EventAction, actor domain.Actor) {
	if s.events == nil {
		return
	}
	at := s.engine.Now()
	switch {
	case action == domain.EventCreated:
		at = req.CreatedAt
	case action != domain.EventDeleted && req.HandledAt != nil:
		at = *req.HandledAt
	}
	s.events.Enqueue(domain.RequestEvent{
		RequestID: req.ID,
		Action:    action,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Status:    req.Status,
		At:        at,
	})
}
