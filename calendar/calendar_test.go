package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-02 is a Monday, 2026-03-07 a Saturday.
const (
	monday   = "2026-03-02"
	saturday = "2026-03-07"
)

func TestIsOpen(t *testing.T) {
	s := NewService()

	tests := []struct {
		date string
		time string
		want bool
	}{
		{monday, "08:00", true},
		{monday, "11:59", true},
		{monday, "12:00", false}, // lunch break
		{monday, "12:30", false},
		{monday, "13:00", true},
		{monday, "17:59", true},
		{monday, "18:00", false},
		{saturday, "10:00", false},
	}
	for _, tt := range tests {
		got, err := s.IsOpen(tt.date, tt.time)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.date, tt.time)
	}
}

func TestIsOpenRejectsMalformedInput(t *testing.T) {
	s := NewService()
	_, err := s.IsOpen("tomorrow", "10:00")
	assert.Error(t, err)
	_, err = s.IsOpen(monday, "noonish")
	assert.Error(t, err)
}

func TestAvailableSlotsSkipBookings(t *testing.T) {
	s := NewService()

	slots, err := s.AvailableSlots(monday, 30)
	require.NoError(t, err)
	// 8 slots in the morning window, 10 in the afternoon
	require.Len(t, slots, 18)

	require.NoError(t, s.Book("apt-1", monday, "09:00", 30))

	slots, err = s.AvailableSlots(monday, 30)
	require.NoError(t, err)
	assert.Len(t, slots, 17)
	for _, slot := range slots {
		assert.NotEqual(t, "09:00", slot.Time)
	}
}

func TestAvailableSlotsClosedDay(t *testing.T) {
	s := NewService()
	slots, err := s.AvailableSlots(saturday, 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestBookRejectsOverlap(t *testing.T) {
	s := NewService()
	require.NoError(t, s.Book("apt-1", monday, "10:00", 60))

	assert.Error(t, s.Book("apt-2", monday, "10:30", 30))
	assert.Error(t, s.Book("apt-3", monday, "09:30", 60))
	assert.NoError(t, s.Book("apt-4", monday, "11:00", 30))
}

func TestBookOutsideHoursFails(t *testing.T) {
	s := NewService()
	assert.Error(t, s.Book("apt-1", monday, "07:00", 30))
	assert.Error(t, s.Book("apt-2", saturday, "10:00", 30))
}

func TestCancelFreesSlot(t *testing.T) {
	s := NewService()
	require.NoError(t, s.Book("apt-1", monday, "10:00", 30))
	require.True(t, s.Cancel("apt-1"))
	assert.False(t, s.Cancel("apt-1"))
	assert.NoError(t, s.Book("apt-2", monday, "10:00", 30))
}
