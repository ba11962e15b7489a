package billing

import "time"

// Eligibility gates every mutating billing operation. It is derived from the
// subscription state alone; GracePeriodEnds is filled in by the caller when
// the state carries a grace window.
type Eligibility struct {
	State           State      `json:"state"`
	CanCreateNew    bool       `json:"can_create_new"`
	CanUpgrade      bool       `json:"can_upgrade"`
	CanCancel       bool       `json:"can_cancel"`
	CanReactivate   bool       `json:"can_reactivate"`
	GracePeriodEnds *time.Time `json:"grace_period_ends,omitempty"`
}

// StateEligibility returns the eligibility vector for a state.
//
// During the cancellation grace period no new subscription may be created;
// the user has to reactivate the existing one first.
func StateEligibility(state State) Eligibility {
	e := Eligibility{State: state}
	switch state {
	case StateFree:
		e.CanCreateNew = true
		e.CanUpgrade = true
	case StateActive:
		e.CanUpgrade = true
		e.CanCancel = true
	case StateCanceledGracePeriod:
		e.CanReactivate = true
	default:
		// CANCELED_EXPIRED, PAST_DUE, INCOMPLETE, UNPAID: the old
		// subscription is beyond saving, start over.
		e.CanCreateNew = true
		e.CanUpgrade = true
	}
	return e
}
