package notify

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickstack/tickstack-server/internal/live"
)

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []live.Event
}

func (r *recordingEmitter) Emit(event any) {
	evt, ok := event.(live.Event)
	if !ok {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *recordingEmitter) snapshot() []live.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]live.Event(nil), r.events...)
}

func TestLocalNotifier_PermissionIdempotent(t *testing.T) {
	n := NewLocalNotifier(&recordingEmitter{}, slog.New(slog.DiscardHandler), false)
	defer n.Shutdown()

	ctx := context.Background()

	perm, err := n.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, perm)

	// Asking again never flips the answer.
	perm, err = n.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, perm)
}

func TestLocalNotifier_ScheduleReplacesSameItem(t *testing.T) {
	n := NewLocalNotifier(&recordingEmitter{}, slog.New(slog.DiscardHandler), true)
	defer n.Shutdown()

	ctx := context.Background()
	due := time.Now().Add(time.Hour)

	require.NoError(t, n.Schedule(ctx, "u1", Request{ItemID: "u1-5", Trigger: TriggerFrom(due, false)}))
	require.NoError(t, n.Schedule(ctx, "u1", Request{ItemID: "u1-5", Trigger: TriggerFrom(due.Add(time.Hour), false)}))

	assert.Equal(t, 1, n.PendingCount())
}

func TestLocalNotifier_CancelUnknownIsNoop(t *testing.T) {
	n := NewLocalNotifier(&recordingEmitter{}, slog.New(slog.DiscardHandler), true)
	defer n.Shutdown()

	require.NoError(t, n.Cancel(context.Background(), "never-scheduled"))
}

func TestLocalNotifier_FireDeliversReminderDue(t *testing.T) {
	emitter := &recordingEmitter{}
	n := NewLocalNotifier(emitter, slog.New(slog.DiscardHandler), true)
	defer n.Shutdown()

	// A trigger whose calendar time already passed fires immediately.
	req := Request{
		ItemID:  "u1-5",
		Title:   "Pay rent",
		Trigger: TriggerFrom(time.Now(), false),
		Payload: map[string]string{PayloadListID: "u1-1", PayloadItemID: "u1-5"},
	}
	require.NoError(t, n.Schedule(context.Background(), "u1", req))

	require.Eventually(t, func() bool {
		return len(emitter.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	evt := emitter.snapshot()[0]
	assert.Equal(t, live.EventReminderDue, evt.Type)
	assert.Equal(t, "u1", evt.OwnerID)
	assert.Equal(t, "u1-1", evt.ListID)
	assert.Equal(t, "u1-5", evt.ItemID)

	// One-shot schedule is gone after firing.
	require.Eventually(t, func() bool {
		return n.PendingCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestLocalNotifier_RepeatingScheduleStaysPending(t *testing.T) {
	emitter := &recordingEmitter{}
	n := NewLocalNotifier(emitter, slog.New(slog.DiscardHandler), true)
	defer n.Shutdown()

	req := Request{
		ItemID:  "u1-5",
		Trigger: TriggerFrom(time.Now(), true),
		Payload: map[string]string{PayloadListID: "u1-1", PayloadItemID: "u1-5"},
	}
	require.NoError(t, n.Schedule(context.Background(), "u1", req))

	require.Eventually(t, func() bool {
		return len(emitter.snapshot()) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// Re-armed for next year, not dropped.
	assert.Equal(t, 1, n.PendingCount())
}

func TestTrigger_NextAfterAdvancesYearly(t *testing.T) {
	base := time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)
	tr := TriggerFrom(base, true)

	next := tr.NextAfter(time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2027, time.June, 1, 8, 0, 0, 0, time.UTC), next)
}
