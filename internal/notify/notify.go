// Package notify reconciles checklist item reminder state with the local
// notification subsystem. The Scheduler is the single choke point: no
// other component may create or cancel schedules directly, which is what
// guarantees at most one pending schedule per item.
package notify

import (
	"context"
	"time"
)

// Permission is the notification authorization state.
type Permission int

const (
	// PermissionUndetermined means permission has not been requested yet.
	PermissionUndetermined Permission = iota
	// PermissionGranted means the user allowed notifications.
	PermissionGranted
	// PermissionDenied means the user refused notifications. Denial is
	// not an error: it silently suppresses scheduling.
	PermissionDenied
)

// Trigger is a calendar-based firing condition: the notification fires
// when the wall clock next matches all five components. With day, month,
// hour and minute all fixed, a repeating trigger recurs yearly.
type Trigger struct {
	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Minute  int
	Repeats bool
}

// TriggerFrom builds a trigger from the calendar components of t.
// Seconds and below are dropped.
func TriggerFrom(t time.Time, repeats bool) Trigger {
	return Trigger{
		Year:    t.Year(),
		Month:   t.Month(),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Repeats: repeats,
	}
}

// FireTime returns the trigger's first firing time in loc.
func (tr Trigger) FireTime(loc *time.Location) time.Time {
	return time.Date(tr.Year, tr.Month, tr.Day, tr.Hour, tr.Minute, 0, 0, loc)
}

// NextAfter returns the next firing time strictly after now, advancing
// year by year, for repeating triggers.
func (tr Trigger) NextAfter(now time.Time, loc *time.Location) time.Time {
	fire := tr.FireTime(loc)
	for !fire.After(now) {
		fire = fire.AddDate(1, 0, 0)
	}
	return fire
}

// Request is a pending notification request, keyed by item ID.
// The payload is an opaque key/value map carried through to the client
// for routing when the notification fires.
type Request struct {
	ItemID  string
	Title   string
	Trigger Trigger
	Payload map[string]string
}

// Payload keys.
const (
	PayloadListID = "list_id"
	PayloadItemID = "item_id"
)

// Notifier abstracts the local notification subsystem.
type Notifier interface {
	// RequestPermission asks for notification authorization. It is
	// idempotent: once granted or denied, later calls return the same
	// answer without prompting again.
	RequestPermission(ctx context.Context) (Permission, error)

	// Schedule registers a pending notification for req.ItemID,
	// replacing any existing one with the same identifier.
	Schedule(ctx context.Context, ownerID string, req Request) error

	// Cancel removes the pending notification for itemID.
	// Cancelling a non-existent schedule is not an error.
	Cancel(ctx context.Context, itemID string) error

	// Pending returns the pending request for itemID, if any.
	Pending(itemID string) (Request, bool)

	// PendingCount returns the number of pending schedules.
	PendingCount() int
}
