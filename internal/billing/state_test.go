package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestCalculateState_FreeTierAlwaysFree(t *testing.T) {
	now := time.Now()
	past := timePtr(now.Add(-24 * time.Hour))

	assert.Equal(t, StateFree, calculateStateAt(StatusActive, TierFree, nil, CancelFlagNone, now))
	assert.Equal(t, StateFree, calculateStateAt(StatusCanceled, TierFree, past, CancelFlagTrue, now))
	assert.Equal(t, StateFree, calculateStateAt(StatusPastDue, TierFree, nil, CancelFlagNone, now))
}

func TestCalculateState_ActivePaid(t *testing.T) {
	now := time.Now()
	future := timePtr(now.Add(10 * 24 * time.Hour))

	assert.Equal(t, StateActive, calculateStateAt(StatusActive, TierPro, future, CancelFlagNone, now))
	assert.Equal(t, StateActive, calculateStateAt(StatusActive, TierBusiness, future, CancelFlagFalse, now))
}

func TestCalculateState_CancelFlagOverridesActiveStatus(t *testing.T) {
	now := time.Now()
	future := timePtr(now.Add(10 * 24 * time.Hour))
	past := timePtr(now.Add(-time.Hour))

	assert.Equal(t, StateCanceledGracePeriod, calculateStateAt(StatusActive, TierPro, future, CancelFlagTrue, now))
	assert.Equal(t, StateCanceledExpired, calculateStateAt(StatusActive, TierPro, past, CancelFlagTrue, now))
}

func TestCalculateState_CanceledStatus(t *testing.T) {
	now := time.Now()
	future := timePtr(now.Add(time.Hour))
	past := timePtr(now.Add(-time.Hour))

	assert.Equal(t, StateCanceledGracePeriod, calculateStateAt(StatusCanceled, TierPro, future, CancelFlagNone, now))
	assert.Equal(t, StateCanceledExpired, calculateStateAt(StatusCanceled, TierPro, past, CancelFlagNone, now))

	// Without a known period end the subscription cannot be in grace.
	assert.Equal(t, StateCanceledExpired, calculateStateAt(StatusCanceled, TierPro, nil, CancelFlagNone, now))
}

func TestCalculateState_PeriodEndBoundary(t *testing.T) {
	now := time.Now()

	// An end exactly at "now" is already expired, grace requires now < end.
	assert.Equal(t, StateCanceledExpired, calculateStateAt(StatusCanceled, TierPro, timePtr(now), CancelFlagNone, now))
	assert.Equal(t, StateCanceledGracePeriod, calculateStateAt(StatusCanceled, TierPro, timePtr(now.Add(time.Second)), CancelFlagNone, now))
}

func TestCalculateState_DelinquentStatuses(t *testing.T) {
	now := time.Now()
	future := timePtr(now.Add(time.Hour))

	assert.Equal(t, StatePastDue, calculateStateAt(StatusPastDue, TierPro, future, CancelFlagNone, now))
	assert.Equal(t, StateIncomplete, calculateStateAt(StatusIncomplete, TierPro, future, CancelFlagNone, now))
	assert.Equal(t, StateUnpaid, calculateStateAt(StatusUnpaid, TierPro, future, CancelFlagNone, now))
}

func TestCalculateState_UnknownStatusFallsBackToFree(t *testing.T) {
	now := time.Now()
	assert.Equal(t, StateFree, calculateStateAt("paused", TierPro, nil, CancelFlagNone, now))
	assert.Equal(t, StateFree, calculateStateAt("", TierPro, nil, CancelFlagNone, now))
}
