package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAbsorbItemRemoval_Unchecked(t *testing.T) {
	c := &Checklist{ListID: "u1-1", TotalItems: 3, PendingCount: 2}
	item := &ChecklistItem{ItemID: "u1-5", ListID: c.ListID, IsChecked: false}

	c.AbsorbItemRemoval(item)

	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, 1, c.PendingCount)
	assert.True(t, c.CountersValid())
}

func TestAbsorbItemRemoval_Checked(t *testing.T) {
	c := &Checklist{ListID: "u1-1", TotalItems: 3, PendingCount: 2}
	item := &ChecklistItem{ItemID: "u1-5", ListID: c.ListID, IsChecked: true}

	c.AbsorbItemRemoval(item)

	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, 2, c.PendingCount)
}

func TestAbsorbItemRemoval_NeverNegative(t *testing.T) {
	c := &Checklist{ListID: "u1-1", TotalItems: 0, PendingCount: 0}
	item := &ChecklistItem{ItemID: "u1-5", IsChecked: false}

	c.AbsorbItemRemoval(item)

	assert.Equal(t, 0, c.TotalItems)
	assert.Equal(t, 0, c.PendingCount)
	assert.True(t, c.CountersValid())
}

func TestAbsorbItemAdded(t *testing.T) {
	c := &Checklist{ListID: "u1-1"}

	c.AbsorbItemAdded(&ChecklistItem{IsChecked: false})
	c.AbsorbItemAdded(&ChecklistItem{IsChecked: true})

	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, 1, c.PendingCount)
}

func TestReminderDue(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		item ChecklistItem
		want bool
	}{
		{
			name: "future unchecked reminding",
			item: ChecklistItem{ShouldRemind: true, DueDate: now.Add(time.Hour)},
			want: true,
		},
		{
			name: "due date in the past",
			item: ChecklistItem{ShouldRemind: true, DueDate: now.Add(-time.Hour)},
			want: false,
		},
		{
			name: "already checked",
			item: ChecklistItem{ShouldRemind: true, IsChecked: true, DueDate: now.Add(time.Hour)},
			want: false,
		},
		{
			name: "no reminder requested",
			item: ChecklistItem{DueDate: now.Add(time.Hour)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.ReminderDue(now))
		})
	}
}

func TestRepeats_InertWithoutRemind(t *testing.T) {
	item := ChecklistItem{ShouldRemind: false, ShouldRepeat: true}
	assert.False(t, item.Repeats())

	item.ShouldRemind = true
	assert.True(t, item.Repeats())
}

func TestClearReminder(t *testing.T) {
	item := ChecklistItem{ShouldRemind: true, ShouldRepeat: true}
	item.ClearReminder()

	assert.False(t, item.ShouldRemind)
	assert.False(t, item.ShouldRepeat)
}
