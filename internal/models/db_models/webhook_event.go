package db_models

import "gorm.io/datatypes"

// WebhookEvent records processed provider events so redelivered webhooks
// are acknowledged without being applied twice.
type WebhookEvent struct {
	BaseModel
	Provider        string `gorm:"index"`
	ProviderEventID string `gorm:"uniqueIndex"`
	EventType       string `gorm:"index"`

	Payload     datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	ProcessedAt int64
}
