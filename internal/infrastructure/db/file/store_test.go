package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/onduty/roster/internal/core/domain"
)

func TestStore_EmptyDirectory(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	users, err := s.LoadUsers(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("expected no users, got %d (%v)", len(users), err)
	}
	reqs, err := s.LoadRequests(ctx)
	if err != nil || len(reqs) != 0 {
		t.Fatalf("expected no requests, got %d (%v)", len(reqs), err)
	}
}

func TestStore_UsersRoundTripKeepsPasswordHash(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir)
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	in := []domain.User{
		{ID: "u1", Name: "Team Admin", Email: "admin@company.local", PasswordHash: "$2a$10$hash", Role: domain.RoleAdmin, CreatedAt: created},
		{ID: "u2", Name: "Alice", Email: "alice@example.com", PasswordHash: "$2a$10$other", Role: domain.RoleUser, CreatedAt: created},
	}
	if err := s.SaveUsers(ctx, in); err != nil {
		t.Fatalf("SaveUsers: %v", err)
	}

	reopened, _ := Open(dir)
	out, err := reopened.LoadUsers(ctx)
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 users, got %d", len(out))
	}
	if out[0].PasswordHash != "$2a$10$hash" || out[0].Role != domain.RoleAdmin || !out[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected user %+v", out[0])
	}
}

func TestStore_RequestsRoundTrip(t *testing.T) {
	s, _ := Open(t.TempDir())
	ctx := context.Background()

	by := "Maria"
	at := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	in := []domain.DutyRequest{
		{ID: "r1", UserID: "u2", UserName: "Alice", Date: "2024-05-10", Shift: domain.ShiftNight, Reason: "cover", Status: domain.StatusPending},
		{ID: "r2", UserID: "u2", UserName: "Alice", Date: "2024-05-11", Shift: domain.ShiftMorning, Reason: "swap", Status: domain.StatusAccepted, HandledBy: &by, HandledAt: &at},
	}
	if err := s.SaveRequests(ctx, in); err != nil {
		t.Fatalf("SaveRequests: %v", err)
	}

	out, err := s.LoadRequests(ctx)
	if err != nil {
		t.Fatalf("LoadRequests: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(out))
	}
	if out[0].HandledBy != nil || out[0].HandledAt != nil {
		t.Fatalf("expected pending request without handler, got %+v", out[0])
	}
	if out[1].HandledBy == nil || *out[1].HandledBy != "Maria" || !out[1].HandledAt.Equal(at) {
		t.Fatalf("unexpected handled request %+v", out[1])
	}
}

func TestStore_SaveEmptyWritesArray(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir)

	if err := s.SaveRequests(context.Background(), nil); err != nil {
		t.Fatalf("SaveRequests: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, requestsFile))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty array, got %q", data)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir)
	if err := os.WriteFile(filepath.Join(dir, usersFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := s.LoadUsers(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestStore_WaitsForOtherProcessLock(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir)

	// A separate handle on the lock file stands in for another process.
	other := flock.New(lockPath(dir, usersFile))
	if err := other.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer other.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := s.SaveUsers(ctx, nil); err == nil {
		t.Fatal("expected users write to wait for the held lock")
	}

	if err := s.SaveRequests(context.Background(), nil); err != nil {
		t.Fatalf("requests are locked independently, got %v", err)
	}
}

func TestStore_ConcurrentWritesHoldTheLock(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir)
	ctx := context.Background()
	other := flock.New(lockPath(dir, usersFile))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		saveErr error
	)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			users := []domain.User{{ID: fmt.Sprintf("u%d", i), Role: domain.RoleUser}}
			if err := s.SaveUsers(ctx, users); err != nil {
				mu.Lock()
				saveErr = err
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			if err := s.SaveRequests(ctx, []domain.DutyRequest{{ID: fmt.Sprintf("r%d", i)}}); err != nil {
				mu.Lock()
				saveErr = err
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if saveErr != nil {
		t.Fatalf("save: %v", saveErr)
	}

	// Every write released its OS lock.
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("expected users lock to be free, got %v %v", locked, err)
	}
	_ = other.Unlock()

	users, err := s.LoadUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("expected one intact users document, got %d (%v)", len(users), err)
	}
	reqs, err := s.LoadRequests(ctx)
	if err != nil || len(reqs) != 1 {
		t.Fatalf("expected one intact requests document, got %d (%v)", len(reqs), err)
	}
}
