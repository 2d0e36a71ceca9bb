package ports

import (
	"context"

	"github.com/onduty/roster/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create stores a new user. Returns domain.ErrDuplicateEmail when the
	// email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	// Delete removes a user. Removing the only remaining admin fails with
	// domain.ErrLastAdmin; the check and the removal are one atomic step.
	Delete(ctx context.Context, id string) error
}
