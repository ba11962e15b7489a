package response_models

import (
	"time"

	"workhub/internal/billing"
)

// OperationResult is the outcome of a mutating billing operation. Business
// rule and provider failures come back as Success=false with a user-facing
// message, never as transport errors.
type OperationResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	URL       string `json:"url,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type PricingTier struct {
	LookupKey  string `json:"lookup_key"`
	Name       string `json:"name"`
	TierLevel  int    `json:"tier_level"`
	PriceMinor int64  `json:"price_minor"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval,omitempty"`
}

type BillingStatus struct {
	Tier                   string              `json:"tier"`
	State                  billing.State       `json:"state"`
	Status                 string              `json:"status"`
	CurrentPeriodEnd       *time.Time          `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd      bool                `json:"cancel_at_period_end"`
	ScheduledDowngradeTier *string             `json:"scheduled_downgrade_tier,omitempty"`
	Eligibility            billing.Eligibility `json:"eligibility"`
}

type SyncReport struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
