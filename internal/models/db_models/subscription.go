package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Subscription mirrors the payment provider's view of an organization's
// plan. At most one row per organization is treated as "the" subscription,
// selected by most recent creation time. The derived state is never stored
// here, it is recomputed from these fields on every read.
type Subscription struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"index"`

	Tier   string `gorm:"index"` // price lookup key, e.g. "free", "pro"
	Status string `gorm:"index"` // provider status: active, canceled, past_due, incomplete, unpaid

	// Unix seconds. Nil for free-tier rows that never had a paid period.
	CurrentPeriodStart *int64
	CurrentPeriodEnd   *int64

	CancelAtPeriodEnd string `gorm:"default:''"` // "true" | "false" | ""
	CanceledAt        *int64

	// Set while a provider-side schedule will switch to a cheaper tier at
	// the period boundary.
	ScheduledDowngradeTier *string
	DowngradeScheduleID    *string

	Provider           string `gorm:"index"` // "stripe", "local"
	ProviderCustomerID string `gorm:"index"`
	ProviderSubID      string `gorm:"index"`

	// Bumped on every write; updates must match the version they read so a
	// webhook and a user action cannot silently clobber each other.
	Version int64 `gorm:"not null;default:1"`

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Organization Organization `gorm:"foreignKey:OrganizationID"`
}
