package service

import (
	"sync"

	"github.com/tickstack/tickstack-server/internal/live"
)

// Watch is the handle for a live subscription opened through the
// service layer. Close releases the underlying hub subscription; the
// caller must do so explicitly, there is no automatic timeout.
type Watch struct {
	hub *live.Hub
	sub *live.Subscription

	closeOnce sync.Once
	done      chan struct{}
}

func newWatch(hub *live.Hub, sub *live.Subscription) *Watch {
	return &Watch{
		hub:  hub,
		sub:  sub,
		done: make(chan struct{}),
	}
}

// ID returns the subscription identifier, useful for logging.
func (w *Watch) ID() string {
	return w.sub.ID
}

// Close stops delivery and frees the subscription. Safe to call more
// than once.
func (w *Watch) Close() {
	w.closeOnce.Do(func() {
		w.hub.Unsubscribe(w.sub.ID)
	})
}

// Done is closed once the delivery goroutine has drained and exited.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// finish marks the delivery goroutine as exited.
func (w *Watch) finish() {
	close(w.done)
}
