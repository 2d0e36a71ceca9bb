package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/onduty/roster/internal/core/domain"
	"github.com/onduty/roster/internal/core/lifecycle"
	"github.com/onduty/roster/internal/core/ports"
)

// AuthService implements registration, login and account management.
type AuthService struct {
	users     ports.UserRepository
	denylist  ports.TokenDenylist
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(users ports.UserRepository, denylist ports.TokenDenylist, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		denylist:  denylist,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user or manager account and signs the new user in.
// Admin accounts can only be created by another admin.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	role := domain.Role(strings.TrimSpace(in.Role))
	if role == "" {
		role = domain.RoleUser
	}
	if role == domain.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts cannot be self-registered", domain.ErrForbidden)
	}

	user, err := s.createUser(ctx, in, role)
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// CreateUser lets an admin add an account of any role without signing in as it.
func (s *AuthService) CreateUser(ctx context.Context, session domain.Session, in ports.RegisterInput) (*domain.User, error) {
	current, err := s.currentUser(ctx, session)
	if err != nil {
		return nil, err
	}
	if current.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	role := domain.Role(strings.TrimSpace(in.Role))
	if role == "" {
		role = domain.RoleUser
	}
	return s.createUser(ctx, in, role)
}

func (s *AuthService) createUser(ctx context.Context, in ports.RegisterInput, role domain.Role) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, &domain.ValidationError{Field: "name"}
	case email == "":
		return nil, &domain.ValidationError{Field: "email"}
	case in.Password == "":
		return nil, &domain.ValidationError{Field: "password"}
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login verifies email and password. Unknown emails and wrong passwords
// both report domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Logout revokes the session's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if session.TokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate decodes a bearer token into a session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	session, err := s.parseToken(token)
	if err != nil {
		return domain.Session{}, err
	}

	revoked, err := s.denylist.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("authenticate: %w", err)
	}
	if revoked {
		return domain.Session{}, domain.ErrSessionRevoked
	}
	return session, nil
}

// GetUser returns a user to themselves or to a manager/admin.
func (s *AuthService) GetUser(ctx context.Context, session domain.Session, id string) (*domain.User, error) {
	current, err := s.currentUser(ctx, session)
	if err != nil {
		return nil, err
	}
	if current.ID == id {
		return current, nil
	}
	if !lifecycle.CanViewAll(current.Actor()) {
		return nil, domain.ErrForbidden
	}
	return s.users.FindByID(ctx, id)
}

// ListUsers returns every account to a manager/admin.
func (s *AuthService) ListUsers(ctx context.Context, session domain.Session) ([]*domain.User, error) {
	current, err := s.currentUser(ctx, session)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanViewAll(current.Actor()) {
		return nil, domain.ErrForbidden
	}
	return s.users.List(ctx)
}

// DeleteAccount removes the session's own account and revokes its token.
// The user's duty requests are left in place.
func (s *AuthService) DeleteAccount(ctx context.Context, session domain.Session) error {
	user, err := s.currentUser(ctx, session)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	if err := s.Logout(ctx, session); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to revoke token of deleted account")
	}

	s.log.Info().Str("user_id", user.ID).Msg("account deleted")
	return nil
}

// SeedAdmin describes the account created when no admin exists.
type SeedAdmin struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdmin creates the seed admin when the store holds no admin at all.
func (s *AuthService) EnsureAdmin(ctx context.Context, seed SeedAdmin) error {
	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if admins > 0 {
		return nil
	}

	user, err := s.createUser(ctx, ports.RegisterInput{
		Name:     seed.Name,
		Email:    seed.Email,
		Password: seed.Password,
	}, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	s.log.Warn().Str("email", user.Email).Msg("no admin found, seeded default admin account")
	return nil
}

// currentUser reloads the session's account, so roles come from the store
// and tokens of deleted accounts stop working even before they expire.
func (s *AuthService) currentUser(ctx context.Context, session domain.Session) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionRevoked
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": string(user.Role),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) parseToken(raw string) (domain.Session, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || !domain.Role(role).Valid() {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	return domain.Session{
		UserID:    sub,
		Name:      name,
		Role:      domain.Role(role),
		TokenID:   jti,
		ExpiresAt: expiresAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
