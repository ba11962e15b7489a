package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"workhub/internal/models/db_models"
)

type IWebhookEventRepository interface {
	// RecordIfNew stores the event and reports whether it was seen for the
	// first time. Redelivered events return false so handlers can ack
	// without re-applying.
	RecordIfNew(ctx context.Context, event *db_models.WebhookEvent) (bool, error)
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) IWebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) RecordIfNew(ctx context.Context, event *db_models.WebhookEvent) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(event)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
