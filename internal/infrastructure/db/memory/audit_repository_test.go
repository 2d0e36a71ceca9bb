package memory

import (
	"context"
	"testing"

	"github.com/onduty/roster/internal/core/domain"
)

func TestAuditRepository_OrderPerRequest(t *testing.T) {
	repo := NewAuditRepository()
	ctx := context.Background()

	_ = repo.Insert(ctx, &domain.RequestEvent{RequestID: "r1", Action: domain.EventCreated})
	_ = repo.Insert(ctx, &domain.RequestEvent{RequestID: "r2", Action: domain.EventCreated})
	_ = repo.Insert(ctx, &domain.RequestEvent{RequestID: "r1", Action: domain.EventAccepted})

	got, _ := repo.ListByRequest(ctx, "r1")
	if len(got) != 2 || got[0].Action != domain.EventCreated || got[1].Action != domain.EventAccepted {
		t.Fatalf("unexpected history %+v", got)
	}

	got[0].Action = domain.EventDeleted
	again, _ := repo.ListByRequest(ctx, "r1")
	if again[0].Action != domain.EventCreated {
		t.Fatal("history entries were aliased")
	}

	if none, _ := repo.ListByRequest(ctx, "missing"); len(none) != 0 {
		t.Fatalf("expected empty history, got %d", len(none))
	}
}
