package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"workhub/internal/models/db_models"
	"workhub/pkg/utils"
)

type ISubscriptionRepository interface {
	// GetLatestByOrganization returns the most recently created row for the
	// organization, or nil when none exists.
	GetLatestByOrganization(ctx context.Context, orgID uuid.UUID) (*db_models.Subscription, error)
	GetByProviderSubID(ctx context.Context, providerSubID string) (*db_models.Subscription, error)
	Create(ctx context.Context, sub *db_models.Subscription) error

	// UpdateVersioned applies the patch only when the row still carries the
	// version the caller read. Returns utils.ErrVersionConflict otherwise.
	UpdateVersioned(ctx context.Context, orgID uuid.UUID, providerSubID string, version int64, patch map[string]interface{}) error

	// ListStale returns rows coupled to a provider whose last update is older
	// than the cutoff, oldest first.
	ListStale(ctx context.Context, updatedBefore time.Time, limit int) ([]db_models.Subscription, error)
	DeleteByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) ISubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetLatestByOrganization(ctx context.Context, orgID uuid.UUID) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		First(&sub).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepository) GetByProviderSubID(ctx context.Context, providerSubID string) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := r.db.WithContext(ctx).
		Where("provider_sub_id = ?", providerSubID).
		Order("created_at DESC").
		First(&sub).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *db_models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepository) UpdateVersioned(ctx context.Context, orgID uuid.UUID, providerSubID string, version int64, patch map[string]interface{}) error {
	updates := make(map[string]interface{}, len(patch)+1)
	for k, v := range patch {
		updates[k] = v
	}
	updates["version"] = version + 1

	res := r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("organization_id = ? AND provider_sub_id = ? AND version = ?", orgID, providerSubID, version).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrVersionConflict
	}
	return nil
}

func (r *subscriptionRepository) ListStale(ctx context.Context, updatedBefore time.Time, limit int) ([]db_models.Subscription, error) {
	var subs []db_models.Subscription
	err := r.db.WithContext(ctx).
		Where("provider_sub_id <> '' AND updated_at < ?", updatedBefore.Unix()).
		Order("updated_at ASC").
		Limit(limit).
		Find(&subs).Error

	if err != nil {
		return nil, err
	}

	return subs, nil
}

func (r *subscriptionRepository) DeleteByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Delete(&db_models.Subscription{}).Error
}
