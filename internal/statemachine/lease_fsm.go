package statemachine

import (
	"context"
	"fmt"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/looplab/fsm"
)

// LeaseFSM wraps a lease with its state machine
type LeaseFSM struct {
	lease *models.Lease
	fsm   *fsm.FSM
}

// NewLeaseFSM creates a new lease state machine
func NewLeaseFSM(lease *models.Lease) *LeaseFSM {
	lfsm := &LeaseFSM{
		lease: lease,
	}

	lfsm.fsm = fsm.NewFSM(
		lease.Status,
		fsm.Events{
			// active → terminated (early termination)
			{Name: "terminate", Src: []string{models.LeaseStatusActive}, Dst: models.LeaseStatusTerminated},

			// active → expired (end date passed)
			{Name: "expire", Src: []string{models.LeaseStatusActive}, Dst: models.LeaseStatusExpired},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Terminate transitions the lease to terminated
func (l *LeaseFSM) Terminate(ctx context.Context) error {
	if !l.lease.MayTerminate() {
		return fmt.Errorf("lease cannot be terminated in current state: %s", l.lease.Status)
	}

	if err := l.fsm.Event(ctx, "terminate"); err != nil {
		return fmt.Errorf("failed to terminate lease: %w", err)
	}

	l.lease.Status = l.fsm.Current()
	return nil
}

// Expire transitions the lease to expired
func (l *LeaseFSM) Expire(ctx context.Context) error {
	if !l.lease.MayExpire() {
		return fmt.Errorf("lease cannot expire in current state: %s", l.lease.Status)
	}

	if err := l.fsm.Event(ctx, "expire"); err != nil {
		return fmt.Errorf("failed to expire lease: %w", err)
	}

	l.lease.Status = l.fsm.Current()
	return nil
}

// Current returns the current state
func (l *LeaseFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LeaseFSM) Can(event string) bool {
	return l.fsm.Can(event)
}
