package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReservationOverlaps(t *testing.T) {
	// Stay occupying [Mar 10, Mar 15)
	r := Reservation{StartDate: day(2026, 3, 10), EndDate: day(2026, 3, 15)}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"identical range", day(2026, 3, 10), day(2026, 3, 15), true},
		{"contained inside", day(2026, 3, 11), day(2026, 3, 13), true},
		{"overlaps tail", day(2026, 3, 14), day(2026, 3, 20), true},
		{"overlaps head", day(2026, 3, 5), day(2026, 3, 11), true},
		{"covers entirely", day(2026, 3, 1), day(2026, 3, 31), true},
		{"single night inside", day(2026, 3, 10), day(2026, 3, 11), true},
		{"ends before", day(2026, 3, 1), day(2026, 3, 5), false},
		{"starts after", day(2026, 3, 20), day(2026, 3, 25), false},
		// Half-open ranges: a new stay may begin on the checkout day and a
		// stay ending on the check-in day does not collide
		{"starts on checkout day", day(2026, 3, 15), day(2026, 3, 18), false},
		{"ends on check-in day", day(2026, 3, 7), day(2026, 3, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Overlaps(tt.start, tt.end))
		})
	}
}

func TestReservationOccupiesDay(t *testing.T) {
	r := Reservation{StartDate: day(2026, 3, 10), EndDate: day(2026, 3, 12)}

	assert.False(t, r.OccupiesDay(day(2026, 3, 9)))
	assert.True(t, r.OccupiesDay(day(2026, 3, 10)))
	assert.True(t, r.OccupiesDay(day(2026, 3, 11)))
	// Checkout day is free for the next guest
	assert.False(t, r.OccupiesDay(day(2026, 3, 12)))
}

func TestReservationBlocksAvailability(t *testing.T) {
	blocking := []string{BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn, LeaseStatusActive}
	for _, status := range blocking {
		r := Reservation{Status: status}
		assert.True(t, r.BlocksAvailability(), "status %s should block", status)
	}

	released := []string{BookingStatusCheckedOut, BookingStatusCancelled, BookingStatusNoShow, LeaseStatusExpired, LeaseStatusTerminated}
	for _, status := range released {
		r := Reservation{Status: status}
		assert.False(t, r.BlocksAvailability(), "status %s should not block", status)
	}
}

func TestReservationCountsForOccupancy(t *testing.T) {
	// Completed stays still count toward history; only cancellations and
	// no-shows vanish from the numbers
	counted := []string{BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn, BookingStatusCheckedOut, LeaseStatusActive, LeaseStatusExpired, LeaseStatusTerminated}
	for _, status := range counted {
		r := Reservation{Status: status}
		assert.True(t, r.CountsForOccupancy(), "status %s should count", status)
	}

	for _, status := range []string{BookingStatusCancelled, BookingStatusNoShow} {
		r := Reservation{Status: status}
		assert.False(t, r.CountsForOccupancy(), "status %s should not count", status)
	}
}

func TestReservationMatches(t *testing.T) {
	r := Reservation{ID: 3, Kind: ReservationKindBooking}

	assert.False(t, r.Matches(nil))
	assert.True(t, r.Matches(&ReservationRef{Kind: ReservationKindBooking, ID: 3}))
	assert.False(t, r.Matches(&ReservationRef{Kind: ReservationKindBooking, ID: 4}))
	// Booking and lease ids come from separate sequences, so kind matters
	assert.False(t, r.Matches(&ReservationRef{Kind: ReservationKindLease, ID: 3}))
}

func TestSortReservationsByStart(t *testing.T) {
	reservations := []Reservation{
		{ID: 9, StartDate: day(2026, 3, 20)},
		{ID: 2, StartDate: day(2026, 3, 10)},
		{ID: 1, StartDate: day(2026, 3, 10)},
	}
	SortReservationsByStart(reservations)

	assert.Equal(t, uint(1), reservations[0].ID)
	assert.Equal(t, uint(2), reservations[1].ID)
	assert.Equal(t, uint(9), reservations[2].ID)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 5, DaysBetween(day(2026, 3, 10), day(2026, 3, 15)))
	assert.Equal(t, 0, DaysBetween(day(2026, 3, 10), day(2026, 3, 10)))
	// Reversed bounds clamp to zero instead of going negative
	assert.Equal(t, 0, DaysBetween(day(2026, 3, 15), day(2026, 3, 10)))
	// Time-of-day noise is truncated away before counting
	assert.Equal(t, 1, DaysBetween(
		time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 11, 0, 15, 0, 0, time.UTC),
	))
}

func TestDateOnly(t *testing.T) {
	truncated := DateOnly(time.Date(2026, 3, 10, 18, 45, 12, 99, time.UTC))
	assert.Equal(t, day(2026, 3, 10), truncated)
}

func TestBookingToReservation(t *testing.T) {
	b := Booking{
		ID:           11,
		PropertyID:   4,
		GuestName:    "Ana Castro",
		CheckInDate:  time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
		Status:       BookingStatusConfirmed,
		TotalAmount:  4800,
	}
	r := b.ToReservation()

	assert.Equal(t, ReservationKindBooking, r.Kind)
	assert.Equal(t, uint(11), r.ID)
	assert.Equal(t, uint(4), r.PropertyID)
	assert.Equal(t, day(2026, 3, 10), r.StartDate)
	assert.Equal(t, day(2026, 3, 14), r.EndDate)
	assert.Equal(t, 4, r.Nights())
	assert.Equal(t, float64(4800), r.Revenue)
}

func TestLeaseToReservation(t *testing.T) {
	l := Lease{
		ID:          5,
		PropertyID:  4,
		StartDate:   day(2026, 1, 1),
		EndDate:     day(2026, 1, 31),
		MonthlyRent: 9000,
		Status:      LeaseStatusActive,
		Tenant:      &Tenant{FullName: "Rosa Díaz"},
	}
	r := l.ToReservation()

	assert.Equal(t, ReservationKindLease, r.Kind)
	assert.Equal(t, "Rosa Díaz", r.GuestName)
	// Rent prorates at 30 days per month: 30 covered days of a 9000 lease
	assert.InDelta(t, 9000.0, r.Revenue, 0.01)

	// A lease without its tenant preloaded projects an empty guest name
	l.Tenant = nil
	assert.Equal(t, "", l.ToReservation().GuestName)
}

func TestLeaseTotalRentProration(t *testing.T) {
	l := Lease{StartDate: day(2026, 1, 1), EndDate: day(2026, 1, 16), MonthlyRent: 9000}
	// 15 covered days at 9000/month = 4500
	assert.InDelta(t, 4500.0, l.TotalRent(), 0.01)
}
