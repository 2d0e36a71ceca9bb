package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/onduty/roster/internal/core/domain"
	"github.com/onduty/roster/internal/core/ports"
)

// RequestRepository implements ports.RequestRepository.
type RequestRepository struct {
	mu    sync.RWMutex
	reqs  []domain.DutyRequest
	store ports.Store
}

// NewRequestRepository returns a repository seeded from store. store may be nil.
func NewRequestRepository(ctx context.Context, store ports.Store) (*RequestRepository, error) {
	r := &RequestRepository{store: store}
	if store != nil {
		reqs, err := store.LoadRequests(ctx)
		if err != nil {
			return nil, fmt.Errorf("load requests: %w", err)
		}
		r.reqs = reqs
	}
	return r, nil
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.DutyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := append(append(make([]domain.DutyRequest, 0, len(r.reqs)+1), r.reqs...), cloneRequest(*req))
	return r.commit(ctx, next)
}

func (r *RequestRepository) FindByID(_ context.Context, id string) (*domain.DutyRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		found := cloneRequest(r.reqs[i])
		return &found, nil
	}
	return nil, domain.ErrRequestNotFound
}

func (r *RequestRepository) List(_ context.Context, filter ports.ListRequestsFilter) ([]*domain.DutyRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.DutyRequest, 0, len(r.reqs))
	for _, req := range r.reqs {
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		c := cloneRequest(req)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *RequestRepository) CompareAndSwapStatus(ctx context.Context, updated *domain.DutyRequest, from domain.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(updated.ID)
	if i < 0 {
		return domain.ErrRequestNotFound
	}
	if r.reqs[i].Status != from {
		return fmt.Errorf("%w: request is already %s", domain.ErrInvalidTransition, r.reqs[i].Status)
	}

	next := append(make([]domain.DutyRequest, 0, len(r.reqs)), r.reqs...)
	next[i] = cloneRequest(*updated)
	return r.commit(ctx, next)
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrRequestNotFound
	}
	next := make([]domain.DutyRequest, 0, len(r.reqs)-1)
	next = append(next, r.reqs[:i]...)
	next = append(next, r.reqs[i+1:]...)
	return r.commit(ctx, next)
}

func (r *RequestRepository) indexOf(id string) int {
	for i, req := range r.reqs {
		if req.ID == id {
			return i
		}
	}
	return -1
}

func (r *RequestRepository) commit(ctx context.Context, next []domain.DutyRequest) error {
	if r.store != nil {
		if err := r.store.SaveRequests(ctx, next); err != nil {
			return fmt.Errorf("save requests: %w", err)
		}
	}
	r.reqs = next
	return nil
}

// cloneRequest copies the pointer fields so callers cannot alias stored state.
func cloneRequest(req domain.DutyRequest) domain.DutyRequest {
	if req.HandledBy != nil {
		by := *req.HandledBy
		req.HandledBy = &by
	}
	if req.HandledAt != nil {
		at := *req.HandledAt
		req.HandledAt = &at
	}
	return req
}
