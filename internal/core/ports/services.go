package ports

import (
	"context"

	"github.com/onduty/roster/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned when a call establishes a session.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService defines identity use cases.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, session domain.Session) error
	Authenticate(ctx context.Context, token string) (domain.Session, error)
	CreateUser(ctx context.Context, session domain.Session, in RegisterInput) (*domain.User, error)
	GetUser(ctx context.Context, session domain.Session, id string) (*domain.User, error)
	ListUsers(ctx context.Context, session domain.Session) ([]*domain.User, error)
	DeleteAccount(ctx context.Context, session domain.Session) error
}

// ListRequestsInput carries the parameters of the list endpoint.
type ListRequestsInput struct {
	Status string
}

// RequestService defines duty request use cases.
type RequestService interface {
	Create(ctx context.Context, session domain.Session, in domain.NewRequest) (*domain.DutyRequest, error)
	Get(ctx context.Context, session domain.Session, id string) (*domain.DutyRequest, error)
	List(ctx context.Context, session domain.Session, in ListRequestsInput) ([]*domain.DutyRequest, error)
	Transition(ctx context.Context, session domain.Session, id string, action domain.Action) (*domain.DutyRequest, error)
	Permitted(ctx context.Context, session domain.Session, id string) ([]domain.Action, error)
	History(ctx context.Context, session domain.Session, id string) ([]*domain.RequestEvent, error)
	Delete(ctx context.Context, session domain.Session, id string) error
}

// AuditService records request history entries.
type AuditService interface {
	Record(ctx context.Context, event domain.RequestEvent) error
}
