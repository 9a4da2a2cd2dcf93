package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBooking_IsActive(t *testing.T) {
	tests := []struct {
		status BookingStatus
		want   bool
	}{
		{StatusTentative, true},
		{StatusConfirmed, true},
		{StatusCancelled, false},
		{StatusCompleted, false},
		{StatusNoShow, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			b := &Booking{Status: tt.status}
			assert.Equal(t, tt.want, b.IsActive())
		})
	}
}

func TestBooking_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   BookingStatus
		to     BookingStatus
		want   bool
	}{
		{"tentative to confirmed", StatusTentative, StatusConfirmed, true},
		{"tentative to cancelled", StatusTentative, StatusCancelled, true},
		{"tentative to completed", StatusTentative, StatusCompleted, true},
		{"tentative to no_show", StatusTentative, StatusNoShow, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to no_show", StatusConfirmed, StatusNoShow, true},
		{"confirmed to tentative", StatusConfirmed, StatusTentative, false},
		{"cancelled is terminal", StatusCancelled, StatusTentative, false},
		{"completed is terminal", StatusCompleted, StatusConfirmed, false},
		{"no_show is terminal", StatusNoShow, StatusCancelled, false},
		{"unknown status", BookingStatus("bogus"), StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.from}
			assert.Equal(t, tt.want, b.CanTransitionTo(tt.to))
		})
	}
}

func TestBooking_LifecyclePredicates(t *testing.T) {
	tentative := &Booking{Status: StatusTentative}
	assert.True(t, tentative.CanBeConfirmed())
	assert.True(t, tentative.CanBeCancelled())
	assert.True(t, tentative.CanBeUpdated())
	assert.False(t, tentative.IsTerminal())

	confirmed := &Booking{Status: StatusConfirmed}
	assert.False(t, confirmed.CanBeConfirmed())
	assert.True(t, confirmed.CanBeCancelled())
	assert.True(t, confirmed.CanBeUpdated())

	cancelled := &Booking{Status: StatusCancelled}
	assert.False(t, cancelled.CanBeConfirmed())
	assert.False(t, cancelled.CanBeCancelled())
	assert.False(t, cancelled.CanBeUpdated())
	assert.True(t, cancelled.IsTerminal())
}

func TestPagination_Normalize(t *testing.T) {
	p := Pagination{}.Normalize()
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = Pagination{Page: -5, Limit: 0}.Normalize()
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = Pagination{Page: 3, Limit: 10}.Normalize()
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset())
}
