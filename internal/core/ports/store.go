package ports

import (
	"context"
	"time"

	"github.com/onduty/roster/internal/core/domain"
)

// Store is a whole-collection snapshot medium. In-memory repositories load
// from it once and write the full collection back after every mutation.
type Store interface {
	LoadUsers(ctx context.Context) ([]domain.User, error)
	SaveUsers(ctx context.Context, users []domain.User) error
	LoadRequests(ctx context.Context) ([]domain.DutyRequest, error)
	SaveRequests(ctx context.Context, reqs []domain.DutyRequest) error
}

// TokenDenylist records session tokens that were logged out before expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
