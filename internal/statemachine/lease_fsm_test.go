package statemachine

import (
	"context"
	"testing"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLeaseTerminate(t *testing.T) {
	ctx := context.Background()

	lease := &models.Lease{Status: models.LeaseStatusActive}
	assert.NoError(t, NewLeaseFSM(lease).Terminate(ctx))
	assert.Equal(t, models.LeaseStatusTerminated, lease.Status)

	// Terminated is terminal
	assert.Error(t, NewLeaseFSM(lease).Terminate(ctx))
	assert.Error(t, NewLeaseFSM(lease).Expire(ctx))
	assert.Equal(t, models.LeaseStatusTerminated, lease.Status)
}

func TestLeaseExpire(t *testing.T) {
	ctx := context.Background()

	lease := &models.Lease{Status: models.LeaseStatusActive}
	assert.NoError(t, NewLeaseFSM(lease).Expire(ctx))
	assert.Equal(t, models.LeaseStatusExpired, lease.Status)

	// An expired lease cannot be terminated or expired again
	assert.Error(t, NewLeaseFSM(lease).Expire(ctx))
	assert.Error(t, NewLeaseFSM(lease).Terminate(ctx))
	assert.Equal(t, models.LeaseStatusExpired, lease.Status)
}

func TestLeaseCan(t *testing.T) {
	active := NewLeaseFSM(&models.Lease{Status: models.LeaseStatusActive})
	assert.True(t, active.Can("terminate"))
	assert.True(t, active.Can("expire"))
	assert.Equal(t, models.LeaseStatusActive, active.Current())

	expired := NewLeaseFSM(&models.Lease{Status: models.LeaseStatusExpired})
	assert.False(t, expired.Can("terminate"))
	assert.False(t, expired.Can("expire"))
}
