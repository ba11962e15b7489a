package billing

import "time"

// Statuses as stored on the subscription row, mirroring the provider's
// subscription status values.
const (
	StatusActive     = "active"
	StatusCanceled   = "canceled"
	StatusPastDue    = "past_due"
	StatusIncomplete = "incomplete"
	StatusUnpaid     = "unpaid"
)

// Tri-state cancel-at-period-end flag.
const (
	CancelFlagTrue  = "true"
	CancelFlagFalse = "false"
	CancelFlagNone  = ""
)

type State string

const (
	StateFree                State = "FREE"
	StateActive              State = "ACTIVE"
	StateCanceledGracePeriod State = "CANCELED_GRACE_PERIOD"
	StateCanceledExpired     State = "CANCELED_EXPIRED"
	StatePastDue             State = "PAST_DUE"
	StateIncomplete          State = "INCOMPLETE"
	StateUnpaid              State = "UNPAID"
)

// CalculateState derives the subscription state from the stored fields. It is
// recomputed on every read and never persisted, so it cannot drift from the
// row it is derived from.
func CalculateState(status, tier string, currentPeriodEnd *time.Time, cancelAtPeriodEnd string) State {
	return calculateStateAt(status, tier, currentPeriodEnd, cancelAtPeriodEnd, time.Now())
}

func calculateStateAt(status, tier string, currentPeriodEnd *time.Time, cancelAtPeriodEnd string, now time.Time) State {
	// The free tier is never considered canceled or expired.
	if tier == TierFree {
		return StateFree
	}

	if cancelAtPeriodEnd == CancelFlagTrue {
		return graceOrExpired(currentPeriodEnd, now)
	}

	switch status {
	case StatusActive:
		return StateActive
	case StatusCanceled:
		return graceOrExpired(currentPeriodEnd, now)
	case StatusPastDue:
		return StatePastDue
	case StatusIncomplete:
		return StateIncomplete
	case StatusUnpaid:
		return StateUnpaid
	default:
		// Unknown statuses degrade to the free tier rather than erroring.
		return StateFree
	}
}

func graceOrExpired(currentPeriodEnd *time.Time, now time.Time) State {
	if currentPeriodEnd != nil && now.Before(*currentPeriodEnd) {
		return StateCanceledGracePeriod
	}
	return StateCanceledExpired
}
