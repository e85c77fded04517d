package statemachine

import (
	"context"
	"fmt"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/looplab/fsm"
)

// BookingFSM wraps a booking with its state machine
type BookingFSM struct {
	booking *models.Booking
	fsm     *fsm.FSM
}

// NewBookingFSM creates a new booking state machine
func NewBookingFSM(booking *models.Booking) *BookingFSM {
	bfsm := &BookingFSM{
		booking: booking,
	}

	bfsm.fsm = fsm.NewFSM(
		booking.Status,
		fsm.Events{
			// pending → confirmed
			{Name: "confirm", Src: []string{models.BookingStatusPending}, Dst: models.BookingStatusConfirmed},

			// confirmed → checked_in
			{Name: "check_in", Src: []string{models.BookingStatusConfirmed}, Dst: models.BookingStatusCheckedIn},

			// checked_in → checked_out
			{Name: "check_out", Src: []string{models.BookingStatusCheckedIn}, Dst: models.BookingStatusCheckedOut},

			// pending/confirmed → cancelled
			{Name: "cancel", Src: []string{models.BookingStatusPending, models.BookingStatusConfirmed}, Dst: models.BookingStatusCancelled},

			// confirmed → no_show
			{Name: "no_show", Src: []string{models.BookingStatusConfirmed}, Dst: models.BookingStatusNoShow},

			// cancelled → pending (re-enters the blocking set, caller must re-check availability)
			{Name: "reinstate", Src: []string{models.BookingStatusCancelled}, Dst: models.BookingStatusPending},
		},
		fsm.Callbacks{},
	)

	return bfsm
}

// Confirm transitions the booking to confirmed
func (b *BookingFSM) Confirm(ctx context.Context) error {
	if !b.booking.MayConfirm() {
		return fmt.Errorf("booking cannot be confirmed in current state: %s", b.booking.Status)
	}

	if err := b.fsm.Event(ctx, "confirm"); err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	b.booking.Status = b.fsm.Current()
	return nil
}

// CheckIn transitions the booking to checked_in
func (b *BookingFSM) CheckIn(ctx context.Context) error {
	if !b.booking.MayCheckIn() {
		return fmt.Errorf("booking cannot be checked in in current state: %s", b.booking.Status)
	}

	if err := b.fsm.Event(ctx, "check_in"); err != nil {
		return fmt.Errorf("failed to check in booking: %w", err)
	}

	b.booking.Status = b.fsm.Current()
	return nil
}

// CheckOut transitions the booking to checked_out
func (b *BookingFSM) CheckOut(ctx context.Context) error {
	if !b.booking.MayCheckOut() {
		return fmt.Errorf("booking cannot be checked out in current state: %s", b.booking.Status)
	}

	if err := b.fsm.Event(ctx, "check_out"); err != nil {
		return fmt.Errorf("failed to check out booking: %w", err)
	}

	b.booking.Status = b.fsm.Current()
	return nil
}

// Cancel transitions the booking to cancelled
func (b *BookingFSM) Cancel(ctx context.Context) error {
	if !b.booking.MayCancel() {
		return fmt.Errorf("booking cannot be cancelled in current state: %s", b.booking.Status)
	}

	if err := b.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	b.booking.Status = b.fsm.Current()
	return nil
}

// MarkNoShow transitions the booking to no_show
func (b *BookingFSM) MarkNoShow(ctx context.Context) error {
	if !b.booking.MayMarkNoShow() {
		return fmt.Errorf("booking cannot be marked no-show in current state: %s", b.booking.Status)
	}

	if err := b.fsm.Event(ctx, "no_show"); err != nil {
		return fmt.Errorf("failed to mark booking no-show: %w", err)
	}

	b.booking.Status = b.fsm.Current()
	return nil
}

// Reinstate transitions a cancelled booking back to pending
func (b *BookingFSM) Reinstate(ctx context.Context) error {
	if !b.booking.MayReinstate() {
		return fmt.Errorf("booking cannot be reinstated in current state: %s", b.booking.Status)
	}

	if err := b.fsm.Event(ctx, "reinstate"); err != nil {
		return fmt.Errorf("failed to reinstate booking: %w", err)
	}

	b.booking.Status = b.fsm.Current()
	return nil
}

// Current returns the current state
func (b *BookingFSM) Current() string {
	return b.fsm.Current()
}

// Can checks if a transition is possible
func (b *BookingFSM) Can(event string) bool {
	return b.fsm.Can(event)
}
