package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/VMS-VisitService/pkg/types"
)

func makeSlot(date time.Time, start, end types.TimeString) *VisitSlot {
	return &VisitSlot{
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Capacity:  10,
		Status:    SlotStatusAvailable,
	}
}

func TestVisitSlot_Overlaps(t *testing.T) {
	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	otherDay := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a    *VisitSlot
		b    *VisitSlot
		want bool
	}{
		{
			name: "identical windows overlap",
			a:    makeSlot(day, "10:00", "11:00"),
			b:    makeSlot(day, "10:00", "11:00"),
			want: true,
		},
		{
			name: "partial overlap",
			a:    makeSlot(day, "10:00", "11:00"),
			b:    makeSlot(day, "10:30", "11:30"),
			want: true,
		},
		{
			name: "containment overlaps",
			a:    makeSlot(day, "09:00", "12:00"),
			b:    makeSlot(day, "10:00", "11:00"),
			want: true,
		},
		{
			name: "touching boundaries do not overlap",
			a:    makeSlot(day, "10:00", "11:00"),
			b:    makeSlot(day, "11:00", "12:00"),
			want: false,
		},
		{
			name: "disjoint windows",
			a:    makeSlot(day, "10:00", "11:00"),
			b:    makeSlot(day, "14:00", "15:00"),
			want: false,
		},
		{
			name: "same window on different days",
			a:    makeSlot(day, "10:00", "11:00"),
			b:    makeSlot(otherDay, "10:00", "11:00"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestVisitSlot_IsBookable(t *testing.T) {
	slot := &VisitSlot{Status: SlotStatusAvailable}
	assert.True(t, slot.IsBookable())

	for _, status := range []SlotStatus{SlotStatusBooked, SlotStatusCancelled, SlotStatusMaintenance, SlotStatusExpired} {
		slot.Status = status
		assert.False(t, slot.IsBookable(), "status %s must not be bookable", status)
	}
}

func TestVisitSlot_IsFull(t *testing.T) {
	slot := &VisitSlot{Capacity: 10, BookedCount: 9}
	assert.False(t, slot.IsFull())

	slot.BookedCount = 10
	assert.True(t, slot.IsFull())
}

func TestVisitSlot_IsTerminal(t *testing.T) {
	assert.True(t, (&VisitSlot{Status: SlotStatusCancelled}).IsTerminal())
	assert.True(t, (&VisitSlot{Status: SlotStatusExpired}).IsTerminal())
	assert.False(t, (&VisitSlot{Status: SlotStatusAvailable}).IsTerminal())
	assert.False(t, (&VisitSlot{Status: SlotStatusMaintenance}).IsTerminal())
}
