// Package service is the gateway surface consumed by presentation code:
// ownership-scoped reads, writes and live subscriptions over the store,
// with cascade and reminder reconciliation wired in.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tickstack/tickstack-server/internal/domain"
	"github.com/tickstack/tickstack-server/internal/id"
	"github.com/tickstack/tickstack-server/internal/identity"
	"github.com/tickstack/tickstack-server/internal/live"
	"github.com/tickstack/tickstack-server/internal/notify"
	"github.com/tickstack/tickstack-server/internal/store"
)

// ChecklistService orchestrates checklist operations. Every operation
// resolves the current principal first; nothing is ever read or written
// outside that scope.
type ChecklistService struct {
	store     *store.Store
	hub       *live.Hub
	identity  identity.Provider
	ids       *id.Generator
	scheduler *notify.Scheduler
	logger    *slog.Logger
}

// NewChecklistService creates a new checklist service.
func NewChecklistService(
	st *store.Store,
	hub *live.Hub,
	provider identity.Provider,
	ids *id.Generator,
	scheduler *notify.Scheduler,
	logger *slog.Logger,
) *ChecklistService {
	return &ChecklistService{
		store:     st,
		hub:       hub,
		identity:  provider,
		ids:       ids,
		scheduler: scheduler,
		logger:    logger,
	}
}

// NextChecklistID reserves the next checklist ID for the current principal.
func (s *ChecklistService) NextChecklistID(ctx context.Context) (string, error) {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return "", err
	}
	return s.ids.NextChecklistID(ctx, owner)
}

// FetchChecklists returns every checklist of the current principal.
func (s *ChecklistService) FetchChecklists(ctx context.Context) ([]*domain.Checklist, error) {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListChecklists(ctx, owner)
}

// FetchChecklist returns one checklist of the current principal.
func (s *ChecklistService) FetchChecklist(ctx context.Context, listID string) (*domain.Checklist, error) {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetChecklist(ctx, owner, listID)
}

// SaveChecklist stamps the current principal onto the checklist and
// upserts it, fully replacing any existing document.
func (s *ChecklistService) SaveChecklist(ctx context.Context, checklist *domain.Checklist) error {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return err
	}

	checklist.OwnerID = owner
	return s.store.SaveChecklist(ctx, checklist)
}

// DeleteChecklist removes the checklist document, then triggers the item
// cascade in the background. Cascade failures are logged, never surfaced
// to the caller, and never roll the delete back.
func (s *ChecklistService) DeleteChecklist(ctx context.Context, checklist *domain.Checklist) error {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return err
	}

	if err := s.store.DeleteChecklist(ctx, owner, checklist.ListID); err != nil {
		return fmt.Errorf("delete checklist: %w", err)
	}

	// Fire and forget. Detached from the caller's cancellation so a
	// closed request cannot leave half a cascade behind.
	go func(cascadeCtx context.Context) {
		if err := s.cascadeDeleteChecklist(cascadeCtx, owner, checklist.ListID); err != nil {
			s.logger.Warn("checklist cascade failed",
				"list_id", checklist.ListID,
				"owner_id", owner,
				"error", err,
			)
		}
	}(context.WithoutCancel(ctx))

	return nil
}

// SubscribeChecklists opens a live subscription on the principal's
// checklists. onChange receives the full current set after every
// observed change, in server order. The returned watch must be closed.
func (s *ChecklistService) SubscribeChecklists(ctx context.Context, onChange func([]*domain.Checklist)) (*Watch, error) {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := s.hub.Subscribe(owner, "")
	if err != nil {
		return nil, fmt.Errorf("open subscription: %w", err)
	}

	watch := newWatch(s.hub, sub)
	go func() {
		defer watch.finish()
		for evt := range sub.Events {
			if evt.Type != live.EventChecklistSaved && evt.Type != live.EventChecklistDeleted {
				continue
			}
			checklists, err := s.store.ListChecklists(context.WithoutCancel(ctx), owner)
			if err != nil {
				s.logger.Warn("subscription refresh failed",
					"subscription_id", sub.ID,
					"error", err,
				)
				continue
			}
			onChange(checklists)
		}
	}()

	return watch, nil
}
