package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onduty/roster/internal/core/domain"
	"github.com/onduty/roster/internal/core/ports"
)

func newPending(id, userID string, createdAt time.Time) *domain.DutyRequest {
	return &domain.DutyRequest{
		ID:        id,
		UserID:    userID,
		UserName:  userID,
		Date:      "2024-05-10",
		Shift:     domain.ShiftMorning,
		Reason:    "cover",
		Status:    domain.StatusPending,
		CreatedAt: createdAt,
	}
}

func TestRequestRepository_CompareAndSwapStatus(t *testing.T) {
	repo, _ := NewRequestRepository(context.Background(), nil)
	ctx := context.Background()
	if err := repo.Create(ctx, newPending("r1", "alice", time.Now())); err != nil {
		t.Fatalf("Create: %v", err)
	}

	by := "Maria"
	at := time.Now()
	accepted := newPending("r1", "alice", time.Now())
	accepted.Status = domain.StatusAccepted
	accepted.HandledBy = &by
	accepted.HandledAt = &at

	if err := repo.CompareAndSwapStatus(ctx, accepted, domain.StatusPending); err != nil {
		t.Fatalf("first swap: %v", err)
	}

	rejected := *accepted
	rejected.Status = domain.StatusRejected
	if err := repo.CompareAndSwapStatus(ctx, &rejected, domain.StatusPending); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, "r1")
	if stored.Status != domain.StatusAccepted || *stored.HandledBy != "Maria" {
		t.Fatalf("unexpected stored record %+v", stored)
	}

	if err := repo.CompareAndSwapStatus(ctx, newPending("nope", "x", time.Now()), domain.StatusPending); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestRequestRepository_ReturnsCopies(t *testing.T) {
	repo, _ := NewRequestRepository(context.Background(), nil)
	ctx := context.Background()
	by := "Maria"
	req := newPending("r1", "alice", time.Now())
	req.HandledBy = &by
	_ = repo.Create(ctx, req)

	by = "changed"
	got, _ := repo.FindByID(ctx, "r1")
	*got.HandledBy = "mutated"
	got.Status = domain.StatusRevoked

	again, _ := repo.FindByID(ctx, "r1")
	if again.Status != domain.StatusPending || *again.HandledBy != "Maria" {
		t.Fatalf("stored record was aliased: %+v", again)
	}
}

func TestRequestRepository_ListFilterAndOrder(t *testing.T) {
	repo, _ := NewRequestRepository(context.Background(), nil)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	_ = repo.Create(ctx, newPending("r1", "alice", base))
	_ = repo.Create(ctx, newPending("r2", "bob", base.Add(time.Hour)))
	_ = repo.Create(ctx, newPending("r3", "alice", base.Add(2*time.Hour)))

	all, _ := repo.List(ctx, ports.ListRequestsFilter{})
	if len(all) != 3 || all[0].ID != "r3" || all[2].ID != "r1" {
		t.Fatalf("expected newest first, got %v", ids(all))
	}

	alice, _ := repo.List(ctx, ports.ListRequestsFilter{UserID: "alice"})
	if len(alice) != 2 {
		t.Fatalf("expected 2 for alice, got %v", ids(alice))
	}

	none, _ := repo.List(ctx, ports.ListRequestsFilter{Status: domain.StatusAccepted})
	if len(none) != 0 {
		t.Fatalf("expected no accepted requests, got %v", ids(none))
	}
}

func TestRequestRepository_Delete(t *testing.T) {
	repo, _ := NewRequestRepository(context.Background(), nil)
	ctx := context.Background()
	_ = repo.Create(ctx, newPending("r1", "alice", time.Now()))

	if err := repo.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, "r1"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "r1"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound on second delete, got %v", err)
	}
}

func TestRequestRepository_PersistsThroughStore(t *testing.T) {
	store := &stubStore{}
	ctx := context.Background()
	repo, err := NewRequestRepository(ctx, store)
	if err != nil {
		t.Fatalf("NewRequestRepository: %v", err)
	}
	_ = repo.Create(ctx, newPending("r1", "alice", time.Now()))

	reloaded, err := NewRequestRepository(ctx, store)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := reloaded.FindByID(ctx, "r1"); err != nil {
		t.Fatalf("expected request after reload, got %v", err)
	}
}

func TestRequestRepository_SaveFailureLeavesStateUnchanged(t *testing.T) {
	store := &stubStore{}
	ctx := context.Background()
	repo, _ := NewRequestRepository(ctx, store)
	_ = repo.Create(ctx, newPending("r1", "alice", time.Now()))

	store.saveErr = errors.New("disk full")
	accepted := newPending("r1", "alice", time.Now())
	accepted.Status = domain.StatusAccepted
	if err := repo.CompareAndSwapStatus(ctx, accepted, domain.StatusPending); err == nil {
		t.Fatal("expected save error")
	}
	if err := repo.Create(ctx, newPending("r2", "alice", time.Now())); err == nil {
		t.Fatal("expected save error")
	}

	stored, _ := repo.FindByID(ctx, "r1")
	if stored.Status != domain.StatusPending {
		t.Fatalf("expected pending after failed save, got %s", stored.Status)
	}
	if _, err := repo.FindByID(ctx, "r2"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected r2 absent, got %v", err)
	}
}

func ids(reqs []*domain.DutyRequest) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.ID)
	}
	return out
}
