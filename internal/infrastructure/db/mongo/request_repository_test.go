package mongo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/onduty/roster/internal/core/domain"
)

func acceptedBy(id, handler string) *domain.DutyRequest {
	at := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	return &domain.DutyRequest{
		ID:        id,
		Status:    domain.StatusAccepted,
		HandledBy: &handler,
		HandledAt: &at,
	}
}

func TestRequestRepository_CompareAndSwapStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matched", func(mt *mtest.T) {
		repo := &RequestRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		if err := repo.CompareAndSwapStatus(context.Background(), acceptedBy("req-1", "mgr-1"), domain.StatusPending); err != nil {
			t.Fatalf("expected swap to succeed, got %v", err)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "update" {
			t.Fatalf("expected an update command, got %+v", evt)
		}
		updates, err := evt.Command.Lookup("updates").Array().Values()
		if err != nil || len(updates) != 1 {
			t.Fatalf("expected one update statement, got %d (%v)", len(updates), err)
		}
		q := updates[0].Document().Lookup("q").Document()
		if got := q.Lookup("_id").StringValue(); got != "req-1" {
			t.Errorf("expected filter on _id req-1, got %q", got)
		}
		if got := q.Lookup("status").StringValue(); got != "pending" {
			t.Errorf("expected filter on prior status pending, got %q", got)
		}
	})

	mt.Run("lost race reports current status", func(mt *mtest.T) {
		repo := &RequestRepository{col: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: "req-1"},
				{Key: "status", Value: "rejected"},
			}),
		)

		err := repo.CompareAndSwapStatus(context.Background(), acceptedBy("req-1", "mgr-2"), domain.StatusPending)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if want := "request is already rejected"; !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	})

	mt.Run("missing request", func(mt *mtest.T) {
		repo := &RequestRepository{col: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		err := repo.CompareAndSwapStatus(context.Background(), acceptedBy("req-9", "mgr-1"), domain.StatusPending)
		if !errors.Is(err, domain.ErrRequestNotFound) {
			t.Fatalf("expected ErrRequestNotFound, got %v", err)
		}
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := &RequestRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
			Name:    "BadValue",
		}))

		err := repo.CompareAndSwapStatus(context.Background(), acceptedBy("req-1", "mgr-1"), domain.StatusPending)
		if err == nil || errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected a wrapped driver error, got %v", err)
		}
	})
}
