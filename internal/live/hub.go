package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tickstack/tickstack-server/internal/id"
)

// Subscription is one subscriber's live feed. The owner of the handle
// must call Hub.Unsubscribe with its ID to stop delivery and release
// resources; there is no automatic timeout.
type Subscription struct {
	ID          string
	ConnectedAt time.Time
	Events      chan Event
	Done        chan struct{}

	// Filtering fields. Events are filtered in broadcast() so a
	// subscriber only ever sees its own principal's changes. ListID
	// empty means "all lists of this owner".
	OwnerID string
	ListID  string
}

// Hub fans change events out to subscriptions.
type Hub struct {
	subs              map[string]*Subscription
	events            chan Event
	logger            *slog.Logger
	heartbeatInterval time.Duration
	wg                sync.WaitGroup
	mu                sync.RWMutex

	// Shutdown state - protected by shutdownMu
	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:              make(map[string]*Subscription),
		events:            make(chan Event, 1000),
		logger:            logger,
		heartbeatInterval: 30 * time.Second,
	}
}

// Start begins the broadcast loop. Call once at startup in a goroutine.
func (h *Hub) Start(ctx context.Context) {
	h.wg.Add(1)
	defer h.wg.Done()

	h.logger.Info("live hub starting")

	heartbeatTicker := time.NewTicker(h.heartbeatInterval)
	defer heartbeatTicker.Stop()

	for {
		select {
		case event, ok := <-h.events:
			if !ok {
				// Shutdown closed the queue; the buffered events were
				// already received, so everything pending is delivered.
				h.logger.Info("live hub stopping")
				h.closeAll()
				return
			}
			h.broadcast(event)

		case <-heartbeatTicker.C:
			h.broadcast(NewHeartbeatEvent())

		case <-ctx.Done():
			h.logger.Info("live hub stopping")
			h.closeAll()
			return
		}
	}
}

// Shutdown stops accepting events and waits for the broadcast loop to
// drain the queue and close all subscriptions. Only Start receives from
// the queue, so the drain happens on its goroutine; Shutdown just closes
// the channel and waits for Start to exit.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.logger.Info("live hub shutdown initiated")

	// Mark as shutdown AND close the channel while holding the lock.
	// This prevents a race with Emit() which holds the read lock during send.
	h.shutdownMu.Lock()
	if h.shutdown {
		h.shutdownMu.Unlock()
		return nil
	}
	h.shutdown = true
	close(h.events)
	h.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("live events drained")
	case <-ctx.Done():
		h.logger.Warn("live event drain timeout, some events may be lost")
	}

	h.logger.Info("live hub shutdown complete")
	return nil
}

// broadcast delivers an event to every matching subscription.
// Runs only on the broadcast goroutine, so each subscription receives
// events in the order they were observed.
func (h *Hub) broadcast(event Event) {
	var delivered, dropped, filtered int

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if event.Type != EventHeartbeat {
			// Ownership filter: a subscriber never sees another
			// principal's documents.
			if event.OwnerID != sub.OwnerID {
				filtered++
				continue
			}
			// Optional single-list scope.
			if sub.ListID != "" && event.ListID != sub.ListID {
				filtered++
				continue
			}
		}

		// Non-blocking send (drop if the subscriber is slow/stuck).
		select {
		case sub.Events <- event:
			delivered++
		default:
			dropped++
			h.logger.Warn("dropped event for slow subscriber",
				slog.String("subscription_id", sub.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.Type != EventHeartbeat {
		h.logger.Debug("event broadcast",
			slog.String("event_type", string(event.Type)),
			slog.Group("stats",
				slog.Int("delivered", delivered),
				slog.Int("filtered", filtered),
				slog.Int("dropped", dropped)))
	}
}

// Subscribe registers a subscription scoped to one principal, optionally
// narrowed to a single list. Pass listID "" for all of the owner's lists.
func (h *Hub) Subscribe(ownerID, listID string) (*Subscription, error) {
	subID, err := id.Handle("sub")
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		ID:          subID,
		OwnerID:     ownerID,
		ListID:      listID,
		Events:      make(chan Event, 100),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	total := len(h.subs)
	h.mu.Unlock()

	h.logger.Info("subscription opened",
		slog.String("subscription_id", subID),
		slog.String("owner_id", ownerID),
		slog.String("list_id", listID),
		slog.Int("total_subscriptions", total))
	return sub, nil
}

// Unsubscribe removes a subscription and closes its channels.
// Unsubscribing an unknown ID is a no-op.
func (h *Hub) Unsubscribe(subID string) {
	h.mu.Lock()
	sub, ok := h.subs[subID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, subID)
	total := len(h.subs)
	h.mu.Unlock()

	close(sub.Done)
	close(sub.Events)

	h.logger.Info("subscription closed",
		slog.String("subscription_id", subID),
		slog.Duration("duration", time.Since(sub.ConnectedAt)),
		slog.Int("total_subscriptions", total))
}

// Emit queues an event for broadcasting.
// This implements the store.Emitter interface.
func (h *Hub) Emit(event any) {
	evt, ok := event.(Event)
	if !ok {
		h.logger.Error("invalid event type emitted",
			slog.String("type", "unknown"))
		return
	}

	// Hold the read lock through the entire send. This prevents a race
	// with Shutdown() which holds the write lock when closing the channel.
	h.shutdownMu.RLock()
	defer h.shutdownMu.RUnlock()

	if h.shutdown {
		// Expected during shutdown, drop silently.
		return
	}

	select {
	case h.events <- evt:
	default:
		h.logger.Error("live event channel full, dropping event",
			slog.String("event_type", string(evt.Type)))
	}
}

// SubscriptionCount returns the number of open subscriptions.
func (h *Hub) SubscriptionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// closeAll closes every subscription (used during shutdown).
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		close(sub.Done)
		close(sub.Events)
	}
	h.subs = make(map[string]*Subscription)

	h.logger.Info("all subscriptions closed")
}
