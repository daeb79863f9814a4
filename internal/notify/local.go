package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tickstack/tickstack-server/internal/live"
)

// Emitter delivers fired reminders to the live hub.
type Emitter interface {
	Emit(event any)
}

// pending is one armed schedule.
type pending struct {
	ownerID string
	req     Request
	timer   *time.Timer
}

// LocalNotifier is an in-process notification subsystem: pending
// schedules are backed by timers, and a fired schedule is delivered as a
// reminder.due event on the live hub.
//
// The schedule table is owned exclusively by this type; the Scheduler is
// its only caller.
type LocalNotifier struct {
	mu      sync.Mutex
	pending map[string]*pending

	emitter Emitter
	logger  *slog.Logger
	loc     *time.Location

	// Permission state. Resolved once, then idempotent.
	permMu sync.Mutex
	perm   Permission
	allow  bool
}

// NewLocalNotifier creates a local notifier. allow determines how the
// first permission request resolves; it models the user's answer to the
// system prompt and comes from configuration.
func NewLocalNotifier(emitter Emitter, logger *slog.Logger, allow bool) *LocalNotifier {
	return &LocalNotifier{
		pending: make(map[string]*pending),
		emitter: emitter,
		logger:  logger,
		loc:     time.Local,
		allow:   allow,
		perm:    PermissionUndetermined,
	}
}

// RequestPermission implements Notifier. The first call resolves the
// state; every later call returns the same answer.
func (n *LocalNotifier) RequestPermission(_ context.Context) (Permission, error) {
	n.permMu.Lock()
	defer n.permMu.Unlock()

	if n.perm == PermissionUndetermined {
		if n.allow {
			n.perm = PermissionGranted
		} else {
			n.perm = PermissionDenied
		}
		n.logger.Info("notification permission resolved", "granted", n.allow)
	}
	return n.perm, nil
}

// Schedule implements Notifier. An existing schedule for the same item
// is replaced.
func (n *LocalNotifier) Schedule(_ context.Context, ownerID string, req Request) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if old, ok := n.pending[req.ItemID]; ok {
		old.timer.Stop()
	}

	fire := req.Trigger.FireTime(n.loc)
	p := &pending{ownerID: ownerID, req: req}
	p.timer = time.AfterFunc(time.Until(fire), func() {
		n.fire(req.ItemID)
	})
	n.pending[req.ItemID] = p

	n.logger.Debug("schedule armed",
		"item_id", req.ItemID,
		"fire_at", fire,
		"repeats", req.Trigger.Repeats,
	)
	return nil
}

// Cancel implements Notifier. Cancelling an unknown identifier is a no-op.
func (n *LocalNotifier) Cancel(_ context.Context, itemID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if p, ok := n.pending[itemID]; ok {
		p.timer.Stop()
		delete(n.pending, itemID)
	}
	return nil
}

// Pending implements Notifier.
func (n *LocalNotifier) Pending(itemID string) (Request, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	p, ok := n.pending[itemID]
	if !ok {
		return Request{}, false
	}
	return p.req, true
}

// PendingCount implements Notifier.
func (n *LocalNotifier) PendingCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// Shutdown stops every armed timer.
func (n *LocalNotifier) Shutdown() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, p := range n.pending {
		p.timer.Stop()
		delete(n.pending, id)
	}
	n.logger.Info("local notifier stopped")
}

// fire delivers one schedule and either re-arms it (repeating) or drops it.
func (n *LocalNotifier) fire(itemID string) {
	n.mu.Lock()
	p, ok := n.pending[itemID]
	if !ok {
		// Cancelled between timer fire and lock acquisition.
		n.mu.Unlock()
		return
	}

	if p.req.Trigger.Repeats {
		next := p.req.Trigger.NextAfter(time.Now(), n.loc)
		p.timer = time.AfterFunc(time.Until(next), func() {
			n.fire(itemID)
		})
	} else {
		delete(n.pending, itemID)
	}
	n.mu.Unlock()

	n.emitter.Emit(live.NewReminderDueEvent(
		p.ownerID,
		p.req.Payload[PayloadListID],
		p.req.Payload[PayloadItemID],
		p.req.Title,
	))

	n.logger.Info("reminder fired",
		"item_id", itemID,
		"list_id", p.req.Payload[PayloadListID],
		"repeats", p.req.Trigger.Repeats,
	)
}
