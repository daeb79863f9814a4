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

// ItemService orchestrates checklist item operations, including the
// reminder reconciliation that follows every item mutation.
type ItemService struct {
	store     *store.Store
	hub       *live.Hub
	identity  identity.Provider
	ids       *id.Generator
	scheduler *notify.Scheduler
	logger    *slog.Logger
}

// NewItemService creates a new item service.
func NewItemService(
	st *store.Store,
	hub *live.Hub,
	provider identity.Provider,
	ids *id.Generator,
	scheduler *notify.Scheduler,
	logger *slog.Logger,
) *ItemService {
	return &ItemService{
		store:     st,
		hub:       hub,
		identity:  provider,
		ids:       ids,
		scheduler: scheduler,
		logger:    logger,
	}
}

// NextItemID reserves the next item ID for the current principal.
func (s *ItemService) NextItemID(ctx context.Context) (string, error) {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return "", err
	}
	return s.ids.NextItemID(ctx, owner)
}

// FetchItems returns the items of one checklist, optionally narrowed by
// a single equality predicate.
func (s *ItemService) FetchItems(ctx context.Context, listID string, pred *store.Predicate) ([]*domain.ChecklistItem, error) {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListItems(ctx, owner, listID, pred)
}

// FetchItem returns one item of the current principal.
func (s *ItemService) FetchItem(ctx context.Context, itemID string) (*domain.ChecklistItem, error) {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetItem(ctx, owner, itemID)
}

// FetchItemWithParent fetches the parent checklist first, then the item.
// When the parent fetch fails its error propagates unchanged and the
// item fetch is never attempted.
func (s *ItemService) FetchItemWithParent(ctx context.Context, itemID, listID string) (*domain.ChecklistItem, *domain.Checklist, error) {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return nil, nil, err
	}

	parent, err := s.store.GetChecklist(ctx, owner, listID)
	if err != nil {
		return nil, nil, err
	}

	item, err := s.store.GetItem(ctx, owner, itemID)
	if err != nil {
		return nil, nil, err
	}

	return item, parent, nil
}

// SaveItem stamps the current principal onto the item, upserts it, and
// reconciles the item's reminder schedule. Reconciliation runs after the
// successful write and its failure is logged, not surfaced.
func (s *ItemService) SaveItem(ctx context.Context, item *domain.ChecklistItem) error {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return err
	}

	item.OwnerID = owner
	if err := s.store.SaveItem(ctx, item); err != nil {
		return err
	}

	if err := s.scheduler.Reconcile(ctx, item); err != nil {
		s.logger.Warn("reminder reconcile failed after save",
			"item_id", item.ItemID,
			"error", err,
		)
	}
	return nil
}

// DeleteItem removes the item document, then maintains the parent
// checklist's counters and cleans up the item's reminder. The counter
// write and reminder cleanup are best-effort: failures are logged and
// never surfaced, and the delete is not rolled back.
func (s *ItemService) DeleteItem(ctx context.Context, item *domain.ChecklistItem, parent *domain.Checklist) error {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return err
	}

	if err := s.store.DeleteItem(ctx, owner, item.ListID, item.ItemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	// PendingCount only drops for an item that was still unchecked;
	// TotalItems drops unconditionally.
	parent.AbsorbItemRemoval(item)
	parent.OwnerID = owner
	if err := s.store.SaveChecklist(ctx, parent); err != nil {
		s.logger.Warn("counter update failed after item delete",
			"list_id", parent.ListID,
			"item_id", item.ItemID,
			"error", err,
		)
	}

	if item.ShouldRemind {
		item.ClearReminder()
		if err := s.scheduler.Reconcile(ctx, item); err != nil {
			s.logger.Warn("reminder cleanup failed after item delete",
				"item_id", item.ItemID,
				"error", err,
			)
		}
	}

	return nil
}

// ReconcileReminder re-runs reminder reconciliation for an item without
// writing it, for callers that changed nothing but need the schedule
// re-derived (e.g. after permission changes).
func (s *ItemService) ReconcileReminder(ctx context.Context, item *domain.ChecklistItem) error {
	return s.scheduler.Reconcile(ctx, item)
}

// SubscribeItems opens a live subscription on one checklist's items.
// onChange receives the full current item set after every observed
// change, in server order. The returned watch must be closed.
func (s *ItemService) SubscribeItems(ctx context.Context, listID string, onChange func([]*domain.ChecklistItem)) (*Watch, error) {
	owner, err := s.identity.CurrentOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := s.hub.Subscribe(owner, listID)
	if err != nil {
		return nil, fmt.Errorf("open subscription: %w", err)
	}

	watch := newWatch(s.hub, sub)
	go func() {
		defer watch.finish()
		for evt := range sub.Events {
			if evt.Type != live.EventItemSaved && evt.Type != live.EventItemDeleted {
				continue
			}
			items, err := s.store.ListItems(context.WithoutCancel(ctx), owner, listID, nil)
			if err != nil {
				s.logger.Warn("subscription refresh failed",
					"subscription_id", sub.ID,
					"error", err,
				)
				continue
			}
			onChange(items)
		}
	}()

	return watch, nil
}
