package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tickstack/tickstack-server/internal/domain"
)

// Scheduler reconciles item reminder intent with the notification
// subsystem. Reconcile is called after every item save, every item
// delete, and every cascade step.
type Scheduler struct {
	notifier Notifier
	logger   *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewScheduler creates a scheduler over the given notifier.
func NewScheduler(notifier Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Reconcile recomputes the desired schedule for item and applies the
// minimal diff: cancel whatever is pending, then recreate only when the
// item still wants a reminder (remind requested, unchecked, due date
// strictly in the future).
//
// Permission is requested first, idempotently. A denial cancels any
// existing schedule and stops; it is never surfaced as an error.
func (s *Scheduler) Reconcile(ctx context.Context, item *domain.ChecklistItem) error {
	perm, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("request notification permission: %w", err)
	}
	if perm != PermissionGranted {
		if err := s.notifier.Cancel(ctx, item.ItemID); err != nil {
			return fmt.Errorf("cancel schedule: %w", err)
		}
		s.logger.Debug("notification permission not granted, schedule suppressed",
			"item_id", item.ItemID)
		return nil
	}

	// Unconditional cancel keeps the at-most-one invariant even when a
	// new schedule is created right after.
	if err := s.notifier.Cancel(ctx, item.ItemID); err != nil {
		return fmt.Errorf("cancel schedule: %w", err)
	}

	if !item.ReminderDue(s.now()) {
		return nil
	}

	req := Request{
		ItemID:  item.ItemID,
		Title:   item.Title,
		Trigger: TriggerFrom(item.DueDate, item.Repeats()),
		Payload: map[string]string{
			PayloadListID: item.ListID,
			PayloadItemID: item.ItemID,
		},
	}

	if err := s.notifier.Schedule(ctx, item.OwnerID, req); err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	s.logger.Info("reminder scheduled",
		"item_id", item.ItemID,
		"list_id", item.ListID,
		"due_date", item.DueDate,
		"repeats", req.Trigger.Repeats,
	)
	return nil
}
