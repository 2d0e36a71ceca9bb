package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/onduty/roster/internal/core/domain"
	"github.com/onduty/roster/internal/core/lifecycle"
	"github.com/onduty/roster/internal/core/ports"
	"github.com/onduty/roster/internal/core/service"
	"github.com/onduty/roster/internal/infrastructure/db/memory"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	users, _ := memory.NewUserRepository(ctx, nil)
	requests, _ := memory.NewRequestRepository(ctx, nil)
	audit := memory.NewAuditRepository()

	auth := service.NewAuthService(users, memory.NewTokenDenylist(), "router-test-secret-123", time.Hour, zerolog.Nop())
	if err := auth.EnsureAdmin(ctx, service.SeedAdmin{Name: "Team Admin", Email: "admin@company.local", Password: "admin"}); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	publisher := syncPublisher{audit: service.NewAuditService(audit, zerolog.Nop())}
	requestsSvc := service.NewRequestService(requests, users, audit, publisher, lifecycle.New(), zerolog.Nop())

	e := NewRouter(Dependencies{
		Auth:     auth,
		Requests: requestsSvc,
		Log:      zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})
	return &testServer{t: t, handler: e}
}

// syncPublisher records history inline so responses can be asserted on
// without waiting for the dispatcher.
type syncPublisher struct {
	audit ports.AuditService
}

func (p syncPublisher) Enqueue(event domain.RequestEvent) {
	_ = p.audit.Record(context.Background(), event)
}

func (s *testServer) do(method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func (s *testServer) register(name, email, role string) string {
	s.t.Helper()
	body := `{"name":"` + name + `","email":"` + email + `","password":"pass123","role":"` + role + `"}`
	rec, out := s.do(http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", email, rec.Code, rec.Body.String())
	}
	return out["token"].(string)
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	rec, out := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body.String())
	}
	return out["token"].(string)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK || out["status"] != "OK" {
		t.Fatalf("unexpected liveness %d %v", rec.Code, out)
	}

	rec, _ = s.do(http.MethodGet, "/api/health/ready", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready with no dependencies, got %d", rec.Code)
	}

	rec, _ = s.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", rec.Code)
	}
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(http.MethodGet, "/api/requests", "", "")
	if rec.Code != http.StatusUnauthorized || out["error"] == nil {
		t.Fatalf("expected 401 envelope, got %d %v", rec.Code, out)
	}

	rec, _ = s.do(http.MethodGet, "/api/requests", "not-a-jwt", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestRouter_RequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com", "user")
	bob := s.register("Bob", "bob@example.com", "")
	maria := s.register("Maria", "maria@example.com", "manager")

	rec, created := s.do(http.MethodPost, "/api/requests", alice, `{"date":"2024-05-10","shift":"weekend","reason":"cover for Bob"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	if created["status"] != "pending" || created["shift"] != "morning" || created["user_name"] != "Alice" {
		t.Fatalf("unexpected created request %v", created)
	}
	id := created["id"].(string)
	base := "/api/requests/" + id

	if rec, _ := s.do(http.MethodPost, base+"/accept", alice, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("owner accept: expected 403, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, base, bob, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("peer get: expected 403, got %d", rec.Code)
	}

	_, actions := s.do(http.MethodGet, base+"/actions", maria, "")
	if list, _ := actions["actions"].([]any); len(list) != 2 || list[0] != "accept" || list[1] != "reject" {
		t.Fatalf("unexpected manager actions %v", actions)
	}

	rec, accepted := s.do(http.MethodPost, base+"/accept", maria, "")
	if rec.Code != http.StatusOK || accepted["status"] != "accepted" || accepted["handled_by"] != "Maria" {
		t.Fatalf("accept: %d %v", rec.Code, accepted)
	}

	if rec, _ := s.do(http.MethodPost, base+"/reject", maria, ""); rec.Code != http.StatusConflict {
		t.Fatalf("reject after accept: expected 409, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodPost, base+"/revoke", alice, ""); rec.Code != http.StatusConflict {
		t.Fatalf("revoke after accept: expected 409, got %d", rec.Code)
	}

	_, fetched := s.do(http.MethodGet, base, alice, "")
	if fetched["status"] != "accepted" || fetched["handled_by"] != "Maria" {
		t.Fatalf("expected stored request unchanged, got %v", fetched)
	}

	_, history := s.do(http.MethodGet, base+"/history", alice, "")
	if events, _ := history["events"].([]any); len(events) != 2 {
		t.Fatalf("expected 2 history entries, got %v", history)
	}

	_, own := s.do(http.MethodGet, "/api/requests", bob, "")
	if own["total"] != float64(0) {
		t.Fatalf("expected bob to see nothing, got %v", own)
	}
	_, all := s.do(http.MethodGet, "/api/requests?status=accepted", maria, "")
	if all["total"] != float64(1) {
		t.Fatalf("expected manager to see 1 accepted, got %v", all)
	}

	if rec, _ := s.do(http.MethodDelete, base, bob, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("peer delete: expected 403, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodDelete, base, alice, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: expected 204, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, base, alice, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestRouter_InputErrors(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com", "")

	if rec, _ := s.do(http.MethodPost, "/api/requests", alice, `{"date":"2024-05-10","shift":"night"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing reason: expected 422, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodPost, "/api/requests", alice, `{"date":"2024-05-10","reason":"   "}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank reason: expected 422, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/api/requests?status=done", alice, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/api/requests/missing", alice, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing request: expected 404, got %d", rec.Code)
	}
}

func TestRouter_Accounts(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com", "")

	rec, _ := s.do(http.MethodPost, "/api/auth/register", "", `{"name":"Dup","email":"Alice@Example.com","password":"pass123"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409, got %d", rec.Code)
	}
	rec, _ = s.do(http.MethodPost, "/api/auth/register", "", `{"name":"Eve","email":"eve@example.com","password":"pass123","role":"admin"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin self-register: expected 403, got %d", rec.Code)
	}
	rec, _ = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"alice@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rec.Code)
	}

	if rec, _ := s.do(http.MethodGet, "/api/users", alice, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("user listing users: expected 403, got %d", rec.Code)
	}

	admin := s.login("admin@company.local", "admin")
	rec, out := s.do(http.MethodGet, "/api/users", admin, "")
	if rec.Code != http.StatusOK || out["total"] != float64(2) {
		t.Fatalf("admin listing users: %d %v", rec.Code, out)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("password hash exposed by user listing")
	}

	if rec, _ := s.do(http.MethodDelete, "/api/auth/me", admin, ""); rec.Code != http.StatusConflict {
		t.Fatalf("last admin delete: expected 409, got %d", rec.Code)
	}

	rec, me := s.do(http.MethodGet, "/api/auth/me", alice, "")
	if rec.Code != http.StatusOK || me["email"] != "alice@example.com" {
		t.Fatalf("me: %d %v", rec.Code, me)
	}
	if rec, _ := s.do(http.MethodPost, "/api/auth/logout", alice, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/api/auth/me", alice, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", rec.Code)
	}

	again := s.login("alice@example.com", "pass123")
	if rec, _ := s.do(http.MethodDelete, "/api/auth/me", again, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete account: expected 204, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"alice@example.com","password":"pass123"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("login after delete: expected 401, got %d", rec.Code)
	}
}
