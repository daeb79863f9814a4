package store

import "github.com/tickstack/tickstack-server/internal/domain"

// ItemField names a filterable field of a checklist item. Queries use a
// typed field instead of ad hoc field-name/value maps so a typo cannot
// silently match nothing.
type ItemField int

const (
	// ItemFieldShouldRemind filters on the ShouldRemind flag.
	ItemFieldShouldRemind ItemField = iota
	// ItemFieldShouldRepeat filters on the ShouldRepeat flag.
	ItemFieldShouldRepeat
	// ItemFieldIsChecked filters on the IsChecked flag.
	ItemFieldIsChecked
)

// Predicate is a single equality filter applied while listing items.
type Predicate struct {
	Field ItemField
	Value bool
}

// WhereRemind matches items whose ShouldRemind equals v.
func WhereRemind(v bool) *Predicate {
	return &Predicate{Field: ItemFieldShouldRemind, Value: v}
}

// WhereRepeat matches items whose ShouldRepeat equals v.
func WhereRepeat(v bool) *Predicate {
	return &Predicate{Field: ItemFieldShouldRepeat, Value: v}
}

// WhereChecked matches items whose IsChecked equals v.
func WhereChecked(v bool) *Predicate {
	return &Predicate{Field: ItemFieldIsChecked, Value: v}
}

// Matches reports whether the item satisfies the predicate.
// A nil predicate matches everything.
func (p *Predicate) Matches(item *domain.ChecklistItem) bool {
	if p == nil {
		return true
	}
	switch p.Field {
	case ItemFieldShouldRemind:
		return item.ShouldRemind == p.Value
	case ItemFieldShouldRepeat:
		return item.ShouldRepeat == p.Value
	case ItemFieldIsChecked:
		return item.IsChecked == p.Value
	default:
		return false
	}
}
