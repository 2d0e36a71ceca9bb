package ports

import (
	"context"

	"github.com/onduty/roster/internal/core/domain"
)

// ListRequestsFilter carries query parameters for listing duty requests.
type ListRequestsFilter struct {
	UserID string               // empty = every user
	Status domain.RequestStatus // empty = every status
}

// RequestRepository defines persistence operations for duty requests.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.DutyRequest) error
	FindByID(ctx context.Context, id string) (*domain.DutyRequest, error)
	// List returns matching requests, newest first.
	List(ctx context.Context, filter ListRequestsFilter) ([]*domain.DutyRequest, error)
	// CompareAndSwapStatus writes updated only if the stored record still has
	// status from. A lost race returns domain.ErrInvalidTransition.
	CompareAndSwapStatus(ctx context.Context, updated *domain.DutyRequest, from domain.RequestStatus) error
	Delete(ctx context.Context, id string) error
}

// AuditRepository stores the lifecycle history of duty requests.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.RequestEvent) error
	// ListByRequest returns a request's events, oldest first.
	ListByRequest(ctx context.Context, requestID string) ([]*domain.RequestEvent, error)
}
