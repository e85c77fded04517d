package models

import (
	"sort"
	"time"
)

// Reservation kind constants
const (
	ReservationKindBooking = "booking"
	ReservationKindLease   = "lease"
)

// Reservation is the read-only projection the availability and occupancy
// engines operate on. Bookings and leases both flatten into this shape so a
// single overlap algorithm covers properties rented short-term, long-term or
// both. The interval is half-open [StartDate, EndDate): the checkout day is
// not occupied, which allows same-day turnover.
type Reservation struct {
	ID         uint      `json:"id"`
	Kind       string    `json:"kind"`
	PropertyID uint      `json:"property_id"`
	GuestName  string    `json:"guest_name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     string    `json:"status"`
	Revenue    float64   `json:"revenue"`
}

// ReservationRef identifies one reservation across both kinds. Booking and
// lease ids come from separate sequences, so the kind is part of the identity.
type ReservationRef struct {
	Kind string
	ID   uint
}

// Overlaps reports whether the reservation's interval intersects [start, end).
// Two half-open intervals [a1,a2) and [b1,b2) overlap iff a1 < b2 && b1 < a2.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartDate.Before(end) && start.Before(r.EndDate)
}

// OccupiesDay reports whether the calendar day d falls inside the interval,
// i.e. StartDate <= d < EndDate.
func (r *Reservation) OccupiesDay(d time.Time) bool {
	return !d.Before(r.StartDate) && d.Before(r.EndDate)
}

// BlocksAvailability reports whether the reservation participates in the
// overlap space. Cancelled, no-show, checked-out and terminated reservations
// no longer hold the property.
func (r *Reservation) BlocksAvailability() bool {
	switch r.Status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn, LeaseStatusActive:
		return true
	}
	return false
}

// CountsForOccupancy reports whether the reservation contributes occupied days
// and revenue to reporting. Completed stays still count; only cancellations
// and no-shows are invisible.
func (r *Reservation) CountsForOccupancy() bool {
	return r.Status != BookingStatusCancelled && r.Status != BookingStatusNoShow
}

// Nights returns the number of occupied nights in the interval.
func (r *Reservation) Nights() int {
	return DaysBetween(r.StartDate, r.EndDate)
}

// Matches reports whether the reservation is the one identified by ref.
func (r *Reservation) Matches(ref *ReservationRef) bool {
	return ref != nil && r.Kind == ref.Kind && r.ID == ref.ID
}

// SortReservationsByStart orders a reservation slice by start date ascending,
// breaking ties by id so output is stable across runs.
func SortReservationsByStart(reservations []Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].StartDate.Equal(reservations[j].StartDate) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].StartDate.Before(reservations[j].StartDate)
	})
}

// DateOnly truncates t to midnight UTC. All reservation intervals are stored
// and compared at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from start to end, never
// negative.
func DaysBetween(start, end time.Time) int {
	days := int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
