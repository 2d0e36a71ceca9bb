package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onduty/roster/internal/core/domain"
)

type stubAuthenticator struct {
	session domain.Session
	err     error
	token   string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (domain.Session, error) {
	s.token = token
	return s.session, s.err
}

func runAuth(t *testing.T, authn Authenticator, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(authn)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	stub := &stubAuthenticator{session: domain.Session{UserID: "u-1", Name: "Alice", Role: domain.RoleUser, TokenID: "jti-1"}}

	called := false
	rec := runAuth(t, stub, "Bearer abc.def.ghi", func(c echo.Context) error {
		called = true
		s, ok := SessionFrom(c)
		if !ok || s.UserID != "u-1" || s.Role != domain.RoleUser {
			t.Fatalf("session not set: %+v", s)
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.token != "abc.def.ghi" {
		t.Fatalf("unexpected token passed: %q", stub.token)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"wrong scheme", "Token abc", nil},
		{"invalid token", "Bearer not-a-token", domain.ErrInvalidCredentials},
		{"revoked session", "Bearer revoked", domain.ErrSessionRevoked},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubAuthenticator{err: tc.err}
			rec := runAuth(t, stub, tc.header, func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
