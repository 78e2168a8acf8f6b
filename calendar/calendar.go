// Package calendar provides the clinic-hours and slot-availability checker
// consumed by the booking tools. It is a simple interval-overlap
// implementation over an in-memory book; production deployments would back
// it with a real scheduling system behind the same surface.
package calendar

import (
	"fmt"
	"sync"
	"time"
)

// Slot is one bookable interval on a given date.
type Slot struct {
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"` // HH:MM
	DurationMinutes int    `json:"duration_minutes"`
}

type window struct {
	start int // minutes since midnight
	end   int
}

type booking struct {
	start int
	end   int
	id    string
}

// Service answers availability questions against fixed weekly clinic hours
// and tracks bookings in memory. Safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	hours    map[time.Weekday][]window
	bookings map[string][]booking // keyed by date
}

// NewService creates a calendar with the standard clinic hours: Monday to
// Friday, 08:00-12:00 and 13:00-18:00, closed on weekends.
func NewService() *Service {
	weekday := []window{{start: 8 * 60, end: 12 * 60}, {start: 13 * 60, end: 18 * 60}}
	hours := map[time.Weekday][]window{}
	for _, d := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		hours[d] = weekday
	}
	return &Service{hours: hours, bookings: make(map[string][]booking)}
}

// IsOpen reports whether the clinic is open at the given date and time.
func (s *Service) IsOpen(date, timeOfDay string) (bool, error) {
	weekday, err := parseWeekday(date)
	if err != nil {
		return false, err
	}
	minutes, err := parseMinutes(timeOfDay)
	if err != nil {
		return false, err
	}
	for _, w := range s.hours[weekday] {
		if minutes >= w.start && minutes < w.end {
			return true, nil
		}
	}
	return false, nil
}

// AvailableSlots enumerates open slots of the given duration on a date, on a
// 30-minute grid within clinic hours, skipping slots that overlap existing
// bookings.
func (s *Service) AvailableSlots(date string, durationMinutes int) ([]Slot, error) {
	weekday, err := parseWeekday(date)
	if err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		durationMinutes = 30
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var slots []Slot
	for _, w := range s.hours[weekday] {
		for start := w.start; start+durationMinutes <= w.end; start += 30 {
			if s.overlapsLocked(date, start, start+durationMinutes) {
				continue
			}
			slots = append(slots, Slot{Date: date, Time: formatMinutes(start), DurationMinutes: durationMinutes})
		}
	}
	return slots, nil
}

// Book reserves a slot, rejecting requests outside clinic hours or
// overlapping an existing booking. Returns the booking ID.
func (s *Service) Book(id, date, timeOfDay string, durationMinutes int) error {
	open, err := s.IsOpen(date, timeOfDay)
	if err != nil {
		return err
	}
	if !open {
		return fmt.Errorf("clinic is closed at %s %s", date, timeOfDay)
	}
	start, err := parseMinutes(timeOfDay)
	if err != nil {
		return err
	}
	if durationMinutes <= 0 {
		durationMinutes = 30
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlapsLocked(date, start, start+durationMinutes) {
		return fmt.Errorf("slot %s %s is already booked", date, timeOfDay)
	}
	s.bookings[date] = append(s.bookings[date], booking{start: start, end: start + durationMinutes, id: id})
	return nil
}

// Cancel removes a booking by ID.
func (s *Service) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for date, list := range s.bookings {
		for i, b := range list {
			if b.id == id {
				s.bookings[date] = append(list[:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (s *Service) overlapsLocked(date string, start, end int) bool {
	for _, b := range s.bookings[date] {
		if start < b.end && b.start < end {
			return true
		}
	}
	return false
}

func parseWeekday(date string) (time.Weekday, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.Weekday(), nil
}

func parseMinutes(timeOfDay string) (int, error) {
	t, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", timeOfDay, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
