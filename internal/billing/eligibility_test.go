package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateEligibility(t *testing.T) {
	tests := []struct {
		state         State
		canCreateNew  bool
		canUpgrade    bool
		canCancel     bool
		canReactivate bool
	}{
		{StateFree, true, true, false, false},
		{StateActive, false, true, true, false},
		{StateCanceledGracePeriod, false, false, false, true},
		{StateCanceledExpired, true, true, false, false},
		{StatePastDue, true, true, false, false},
		{StateIncomplete, true, true, false, false},
		{StateUnpaid, true, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			e := StateEligibility(tt.state)
			assert.Equal(t, tt.state, e.State)
			assert.Equal(t, tt.canCreateNew, e.CanCreateNew, "CanCreateNew")
			assert.Equal(t, tt.canUpgrade, e.CanUpgrade, "CanUpgrade")
			assert.Equal(t, tt.canCancel, e.CanCancel, "CanCancel")
			assert.Equal(t, tt.canReactivate, e.CanReactivate, "CanReactivate")
			assert.Nil(t, e.GracePeriodEnds)
		})
	}
}

func TestStateEligibility_GraceBlocksNewSubscriptions(t *testing.T) {
	e := StateEligibility(StateCanceledGracePeriod)
	assert.False(t, e.CanCreateNew)
	assert.False(t, e.CanUpgrade)
	assert.True(t, e.CanReactivate)
}
