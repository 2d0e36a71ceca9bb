package memory

import (
	"context"
	"sync"

	"github.com/onduty/roster/internal/core/domain"
)

// AuditRepository implements ports.AuditRepository. History is not
// persisted to the snapshot store.
type AuditRepository struct {
	mu     sync.RWMutex
	events map[string][]domain.RequestEvent
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{events: make(map[string][]domain.RequestEvent)}
}

func (r *AuditRepository) Insert(_ context.Context, event *domain.RequestEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.RequestID] = append(r.events[event.RequestID], *event)
	return nil
}

func (r *AuditRepository) ListByRequest(_ context.Context, requestID string) ([]*domain.RequestEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.events[requestID]
	out := make([]*domain.RequestEvent, 0, len(stored))
	for _, e := range stored {
		e := e
		out = append(out, &e)
	}
	return out, nil
}
