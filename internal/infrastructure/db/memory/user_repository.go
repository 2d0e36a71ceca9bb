// Package memory implements the repositories on in-process state. When a
// ports.Store is supplied the full collection is loaded from it on start and
// written back after every mutation, which is how the file backend works.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/onduty/roster/internal/core/domain"
	"github.com/onduty/roster/internal/core/ports"
)

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
	store ports.Store
}

// NewUserRepository returns a repository seeded from store. store may be nil.
func NewUserRepository(ctx context.Context, store ports.Store) (*UserRepository, error) {
	r := &UserRepository{store: store}
	if store != nil {
		users, err := store.LoadUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("load users: %w", err)
		}
		r.users = users
	}
	return r, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}

	next := append(append(make([]domain.User, 0, len(r.users)+1), r.users...), *user)
	if err := r.commit(ctx, next); err != nil {
		return nil, err
	}
	created := *user
	return &created, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		out = append(out, &u)
	}
	return out, nil
}

func (r *UserRepository) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]domain.User, 0, len(r.users))
	var (
		found  *domain.User
		admins int
	)
	for i, u := range r.users {
		if u.Role == domain.RoleAdmin {
			admins++
		}
		if u.ID == id {
			found = &r.users[i]
			continue
		}
		next = append(next, u)
	}
	if found == nil {
		return domain.ErrUserNotFound
	}
	if found.Role == domain.RoleAdmin && admins <= 1 {
		return domain.ErrLastAdmin
	}
	return r.commit(ctx, next)
}

// commit persists next before swapping it in, so a failed save leaves the
// repository unchanged. Callers hold r.mu.
func (r *UserRepository) commit(ctx context.Context, next []domain.User) error {
	if r.store != nil {
		if err := r.store.SaveUsers(ctx, next); err != nil {
			return fmt.Errorf("save users: %w", err)
		}
	}
	r.users = next
	return nil
}
