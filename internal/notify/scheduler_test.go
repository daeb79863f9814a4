package notify

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickstack/tickstack-server/internal/domain"
)

// fakeNotifier records schedule mutations without arming timers.
type fakeNotifier struct {
	perm     Permission
	requests int
	pending  map[string]Request
}

func newFakeNotifier(perm Permission) *fakeNotifier {
	return &fakeNotifier{perm: perm, pending: make(map[string]Request)}
}

func (f *fakeNotifier) RequestPermission(_ context.Context) (Permission, error) {
	f.requests++
	return f.perm, nil
}

func (f *fakeNotifier) Schedule(_ context.Context, _ string, req Request) error {
	f.pending[req.ItemID] = req
	return nil
}

func (f *fakeNotifier) Cancel(_ context.Context, itemID string) error {
	delete(f.pending, itemID)
	return nil
}

func (f *fakeNotifier) Pending(itemID string) (Request, bool) {
	req, ok := f.pending[itemID]
	return req, ok
}

func (f *fakeNotifier) PendingCount() int { return len(f.pending) }

func newTestScheduler(notifier Notifier) *Scheduler {
	return NewScheduler(notifier, slog.New(slog.DiscardHandler))
}

func remindingItem(due time.Time) *domain.ChecklistItem {
	return &domain.ChecklistItem{
		ItemID:       "u1-5",
		ListID:       "u1-1",
		OwnerID:      "u1",
		Title:        "Pay rent",
		DueDate:      due,
		ShouldRemind: true,
	}
}

func TestReconcile_SchedulesFutureReminder(t *testing.T) {
	notifier := newFakeNotifier(PermissionGranted)
	sched := newTestScheduler(notifier)

	due := time.Date(2027, time.March, 14, 9, 30, 45, 0, time.Local)
	item := remindingItem(due)

	require.NoError(t, sched.Reconcile(context.Background(), item))

	req, ok := notifier.Pending("u1-5")
	require.True(t, ok)
	assert.Equal(t, 1, notifier.PendingCount())

	// Trigger carries the due date's calendar components, seconds dropped.
	assert.Equal(t, 2027, req.Trigger.Year)
	assert.Equal(t, time.March, req.Trigger.Month)
	assert.Equal(t, 14, req.Trigger.Day)
	assert.Equal(t, 9, req.Trigger.Hour)
	assert.Equal(t, 30, req.Trigger.Minute)
	assert.False(t, req.Trigger.Repeats)

	// Payload carries the routing keys.
	assert.Equal(t, "u1-1", req.Payload[PayloadListID])
	assert.Equal(t, "u1-5", req.Payload[PayloadItemID])
}

func TestReconcile_PastDueDateLeavesNothing(t *testing.T) {
	notifier := newFakeNotifier(PermissionGranted)
	sched := newTestScheduler(notifier)

	item := remindingItem(time.Now().Add(-24 * time.Hour))

	require.NoError(t, sched.Reconcile(context.Background(), item))
	assert.Equal(t, 0, notifier.PendingCount())
}

func TestReconcile_NoRemindCancelsExisting(t *testing.T) {
	notifier := newFakeNotifier(PermissionGranted)
	sched := newTestScheduler(notifier)

	item := remindingItem(time.Now().Add(time.Hour))
	require.NoError(t, sched.Reconcile(context.Background(), item))
	require.Equal(t, 1, notifier.PendingCount())

	item.ShouldRemind = false
	require.NoError(t, sched.Reconcile(context.Background(), item))
	assert.Equal(t, 0, notifier.PendingCount())
}

func TestReconcile_CheckedItemCancelsExisting(t *testing.T) {
	notifier := newFakeNotifier(PermissionGranted)
	sched := newTestScheduler(notifier)

	item := remindingItem(time.Now().Add(time.Hour))
	require.NoError(t, sched.Reconcile(context.Background(), item))

	item.IsChecked = true
	require.NoError(t, sched.Reconcile(context.Background(), item))
	assert.Equal(t, 0, notifier.PendingCount())
}

func TestReconcile_Idempotent(t *testing.T) {
	notifier := newFakeNotifier(PermissionGranted)
	sched := newTestScheduler(notifier)

	item := remindingItem(time.Now().Add(time.Hour))

	require.NoError(t, sched.Reconcile(context.Background(), item))
	require.NoError(t, sched.Reconcile(context.Background(), item))

	// Never two schedules for one item.
	assert.Equal(t, 1, notifier.PendingCount())
}

func TestReconcile_PermissionDeniedSuppressesSilently(t *testing.T) {
	notifier := newFakeNotifier(PermissionDenied)
	sched := newTestScheduler(notifier)

	// Plant a stale schedule; a denied reconcile must still clear it.
	notifier.pending["u1-5"] = Request{ItemID: "u1-5"}

	item := remindingItem(time.Now().Add(time.Hour))
	require.NoError(t, sched.Reconcile(context.Background(), item))
	assert.Equal(t, 0, notifier.PendingCount())
}

func TestReconcile_RepeatInertWithoutRemind(t *testing.T) {
	notifier := newFakeNotifier(PermissionGranted)
	sched := newTestScheduler(notifier)

	item := remindingItem(time.Now().Add(time.Hour))
	item.ShouldRemind = false
	item.ShouldRepeat = true // UI invariant violated; scheduler must tolerate

	require.NoError(t, sched.Reconcile(context.Background(), item))
	assert.Equal(t, 0, notifier.PendingCount())
}

func TestReconcile_RepeatingTrigger(t *testing.T) {
	notifier := newFakeNotifier(PermissionGranted)
	sched := newTestScheduler(notifier)

	item := remindingItem(time.Now().Add(time.Hour))
	item.ShouldRepeat = true

	require.NoError(t, sched.Reconcile(context.Background(), item))

	req, ok := notifier.Pending("u1-5")
	require.True(t, ok)
	assert.True(t, req.Trigger.Repeats)
}
