package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onduty/roster/internal/core/domain"
	"github.com/onduty/roster/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record validates and persists a single history entry.
func (s *auditService) Record(ctx context.Context, event domain.RequestEvent) error {
	if event.RequestID == "" {
		return fmt.Errorf("record event: %w: missing request id", domain.ErrInvalidInput)
	}

	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	s.log.Debug().
		Str("request_id", event.RequestID).
		Str("action", string(event.Action)).
		Str("actor_id", event.ActorID).
		Msg("history entry recorded")
	return nil
}
