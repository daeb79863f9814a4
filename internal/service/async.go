package service

import (
	"context"

	"github.com/tickstack/tickstack-server/internal/async"
	"github.com/tickstack/tickstack-server/internal/domain"
	"github.com/tickstack/tickstack-server/internal/store"
)

// ItemWithParent pairs an item with its already-fetched parent checklist.
type ItemWithParent struct {
	Item      *domain.ChecklistItem
	Checklist *domain.Checklist
}

// Async is the channel-completion facade over the gateway: every
// operation yields a loading result immediately, then exactly one
// terminal success or error result. Callers that need ordering between
// dependent operations await the terminal result before starting the
// next one; independent operations may interleave freely.
type Async struct {
	checklists *ChecklistService
	items      *ItemService
}

// NewAsync creates the async facade over both services.
func NewAsync(checklists *ChecklistService, items *ItemService) *Async {
	return &Async{checklists: checklists, items: items}
}

// FetchChecklists loads all checklists of the current principal.
func (a *Async) FetchChecklists(ctx context.Context) <-chan async.Result[[]*domain.Checklist] {
	return async.Run(ctx, a.checklists.FetchChecklists)
}

// FetchChecklist loads one checklist.
func (a *Async) FetchChecklist(ctx context.Context, listID string) <-chan async.Result[*domain.Checklist] {
	return async.Run(ctx, func(ctx context.Context) (*domain.Checklist, error) {
		return a.checklists.FetchChecklist(ctx, listID)
	})
}

// SaveChecklist upserts a checklist.
func (a *Async) SaveChecklist(ctx context.Context, checklist *domain.Checklist) <-chan async.Result[struct{}] {
	return async.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.checklists.SaveChecklist(ctx, checklist)
	})
}

// DeleteChecklist deletes a checklist; the item cascade is fire-and-forget.
func (a *Async) DeleteChecklist(ctx context.Context, checklist *domain.Checklist) <-chan async.Result[struct{}] {
	return async.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.checklists.DeleteChecklist(ctx, checklist)
	})
}

// FetchItems loads the items of one checklist.
func (a *Async) FetchItems(ctx context.Context, listID string, pred *store.Predicate) <-chan async.Result[[]*domain.ChecklistItem] {
	return async.Run(ctx, func(ctx context.Context) ([]*domain.ChecklistItem, error) {
		return a.items.FetchItems(ctx, listID, pred)
	})
}

// FetchItem loads one item.
func (a *Async) FetchItem(ctx context.Context, itemID string) <-chan async.Result[*domain.ChecklistItem] {
	return async.Run(ctx, func(ctx context.Context) (*domain.ChecklistItem, error) {
		return a.items.FetchItem(ctx, itemID)
	})
}

// FetchItemWithParent loads an item paired with its parent checklist.
// A failing parent fetch is the overall error; the item is not fetched.
func (a *Async) FetchItemWithParent(ctx context.Context, itemID, listID string) <-chan async.Result[ItemWithParent] {
	return async.Run(ctx, func(ctx context.Context) (ItemWithParent, error) {
		item, parent, err := a.items.FetchItemWithParent(ctx, itemID, listID)
		if err != nil {
			return ItemWithParent{}, err
		}
		return ItemWithParent{Item: item, Checklist: parent}, nil
	})
}

// SaveItem upserts an item and reconciles its reminder.
func (a *Async) SaveItem(ctx context.Context, item *domain.ChecklistItem) <-chan async.Result[struct{}] {
	return async.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.items.SaveItem(ctx, item)
	})
}

// DeleteItem deletes an item and maintains the parent's counters.
func (a *Async) DeleteItem(ctx context.Context, item *domain.ChecklistItem, parent *domain.Checklist) <-chan async.Result[struct{}] {
	return async.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.items.DeleteItem(ctx, item, parent)
	})
}

// NextChecklistID reserves the next checklist ID.
func (a *Async) NextChecklistID(ctx context.Context) <-chan async.Result[string] {
	return async.Run(ctx, a.checklists.NextChecklistID)
}

// NextItemID reserves the next item ID.
func (a *Async) NextItemID(ctx context.Context) <-chan async.Result[string] {
	return async.Run(ctx, a.items.NextItemID)
}
