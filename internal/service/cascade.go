package service

import (
	"context"

	"github.com/tickstack/tickstack-server/internal/store"
)

// cascadeDeleteChecklist removes the deleted checklist's items and
// cancels their reminder schedules. It runs after the checklist document
// itself is gone and is best-effort throughout: a failing item never
// stops the remaining items from being processed.
//
// The fetch is restricted to ShouldRemind == true as a schedule-cleanup
// optimization, which means items of the deleted checklist that never
// had a reminder are NOT removed by this path and stay orphaned in the
// store. Longstanding behavior the clients rely on being harmless;
// flagged to be revisited rather than silently fixed here.
func (s *ChecklistService) cascadeDeleteChecklist(ctx context.Context, ownerID, listID string) error {
	items, err := s.store.ListItems(ctx, ownerID, listID, store.WhereRemind(true))
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.store.DeleteItem(ctx, ownerID, item.ListID, item.ItemID); err != nil {
			s.logger.Warn("cascade item delete failed, continuing",
				"item_id", item.ItemID,
				"list_id", listID,
				"error", err,
			)
			continue
		}

		item.ClearReminder()
		if err := s.scheduler.Reconcile(ctx, item); err != nil {
			s.logger.Warn("cascade reminder cancel failed, continuing",
				"item_id", item.ItemID,
				"error", err,
			)
		}
	}

	s.logger.Info("checklist cascade complete",
		"list_id", listID,
		"owner_id", ownerID,
		"items_removed", len(items),
	)
	return nil
}
