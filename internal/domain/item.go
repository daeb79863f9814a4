package domain

import "time"

// ChecklistItem is a single entry in a checklist.
//
// ShouldRepeat is only meaningful while ShouldRemind is true. The UI is
// supposed to enforce that, but the reminder scheduler treats repeat as
// inert whenever remind is off, so a violating document cannot cause a
// stray repeating schedule.
type ChecklistItem struct {
	ItemID       string    `json:"item_id"`
	ListID       string    `json:"list_id"` // Owning checklist
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	DueDate      time.Time `json:"due_date"`
	IsChecked    bool      `json:"is_checked"`
	ShouldRemind bool      `json:"should_remind"`
	ShouldRepeat bool      `json:"should_repeat"`
}

// ReminderDue reports whether the item should have a pending reminder
// schedule: a reminder was requested, the item is still unchecked, and the
// due date is strictly in the future.
func (i *ChecklistItem) ReminderDue(now time.Time) bool {
	return i.ShouldRemind && !i.IsChecked && i.DueDate.After(now)
}

// Repeats reports whether a schedule for this item should repeat.
// Repeat without remind is treated as inert.
func (i *ChecklistItem) Repeats() bool {
	return i.ShouldRemind && i.ShouldRepeat
}

// ClearReminder turns off both reminder flags, used when an item is
// deleted or its checklist goes away.
func (i *ChecklistItem) ClearReminder() {
	i.ShouldRemind = false
	i.ShouldRepeat = false
}
