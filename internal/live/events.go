// Package live implements the in-process change feed that keeps
// subscribers consistent with store state. The store emits an event for
// every observed write; the hub fans events out to per-subscriber
// channels in a single broadcast loop, so delivery within one
// subscription is strictly ordered.
package live

import (
	"time"

	"github.com/google/uuid"

	"github.com/tickstack/tickstack-server/internal/domain"
)

// EventType represents the type of change event.
type EventType string

const (
	// EventChecklistSaved fires after a checklist upsert.
	EventChecklistSaved EventType = "checklist.saved"
	// EventChecklistDeleted fires after a checklist document is removed.
	EventChecklistDeleted EventType = "checklist.deleted"

	// EventItemSaved fires after an item upsert.
	EventItemSaved EventType = "item.saved"
	// EventItemDeleted fires after an item document is removed.
	EventItemDeleted EventType = "item.deleted"

	// EventReminderDue fires when a reminder schedule triggers.
	EventReminderDue EventType = "reminder.due"

	// EventHeartbeat is a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event is a single change notification.
// OwnerID is a delivery filter, never sent to subscribers.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ListID    string    `json:"list_id,omitempty"`
	ItemID    string    `json:"item_id,omitempty"`
	Data      any       `json:"data,omitempty"`

	OwnerID string `json:"-"`
}

func newEvent(t EventType) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
	}
}

// NewChecklistSavedEvent creates a checklist.saved event.
func NewChecklistSavedEvent(c *domain.Checklist) Event {
	e := newEvent(EventChecklistSaved)
	e.OwnerID = c.OwnerID
	e.ListID = c.ListID
	e.Data = c
	return e
}

// NewChecklistDeletedEvent creates a checklist.deleted event.
func NewChecklistDeletedEvent(ownerID, listID string) Event {
	e := newEvent(EventChecklistDeleted)
	e.OwnerID = ownerID
	e.ListID = listID
	return e
}

// NewItemSavedEvent creates an item.saved event.
func NewItemSavedEvent(item *domain.ChecklistItem) Event {
	e := newEvent(EventItemSaved)
	e.OwnerID = item.OwnerID
	e.ListID = item.ListID
	e.ItemID = item.ItemID
	e.Data = item
	return e
}

// NewItemDeletedEvent creates an item.deleted event.
func NewItemDeletedEvent(ownerID, listID, itemID string) Event {
	e := newEvent(EventItemDeleted)
	e.OwnerID = ownerID
	e.ListID = listID
	e.ItemID = itemID
	return e
}

// ReminderDueData is the payload of a reminder.due event, carrying the
// routing keys a client needs to open the right screen.
type ReminderDueData struct {
	ListID string `json:"list_id"`
	ItemID string `json:"item_id"`
	Title  string `json:"title"`
}

// NewReminderDueEvent creates a reminder.due event for a fired schedule.
func NewReminderDueEvent(ownerID, listID, itemID, title string) Event {
	e := newEvent(EventReminderDue)
	e.OwnerID = ownerID
	e.ListID = listID
	e.ItemID = itemID
	e.Data = ReminderDueData{ListID: listID, ItemID: itemID, Title: title}
	return e
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat)
}
