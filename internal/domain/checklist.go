// Package domain defines the core entities of Tickstack: checklists and their items.
package domain

// Checklist is a named list of items owned by exactly one principal.
//
// TotalItems and PendingCount are maintained counters, not derived by a
// query. Every code path that adds or removes an item must keep them
// consistent with the actual item set. Invariant: 0 <= PendingCount <= TotalItems.
type Checklist struct {
	ListID       string `json:"list_id"`
	OwnerID      string `json:"owner_id"` // Principal that owns this checklist, stamped on every write
	Title        string `json:"title"`
	TotalItems   int    `json:"total_items"`
	PendingCount int    `json:"pending_count"`

	// Items is an in-memory convenience cache populated by callers.
	// The source of truth is the item collection, linked by ListID.
	// Never persisted.
	Items []ChecklistItem `json:"-"`
}

// AbsorbItemAdded updates the counters for a newly added item.
func (c *Checklist) AbsorbItemAdded(item *ChecklistItem) {
	c.TotalItems++
	if !item.IsChecked {
		c.PendingCount++
	}
}

// AbsorbItemRemoval updates the counters after an item was deleted.
// PendingCount only drops when the removed item was still unchecked.
// Counters never go negative, even if callers got them out of sync.
func (c *Checklist) AbsorbItemRemoval(item *ChecklistItem) {
	if c.TotalItems > 0 {
		c.TotalItems--
	}
	if !item.IsChecked && c.PendingCount > 0 {
		c.PendingCount--
	}
	if c.PendingCount > c.TotalItems {
		c.PendingCount = c.TotalItems
	}
}

// CountersValid reports whether the maintained counters satisfy the
// checklist invariant.
func (c *Checklist) CountersValid() bool {
	return c.TotalItems >= 0 && c.PendingCount >= 0 && c.PendingCount <= c.TotalItems
}
