package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"workhub/internal/models/db_models"
)

type IOrganizationRepository interface {
	Create(ctx context.Context, org *db_models.Organization, ownerMembership *db_models.Membership, freeSub *db_models.Subscription) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Organization, error)
	FindByIdWithMembers(ctx context.Context, id uuid.UUID) (*db_models.Organization, error)
	ListAll(ctx context.Context, page, pageSize int) ([]db_models.Organization, error)
	GetMembership(ctx context.Context, orgID, accountID uuid.UUID) (*db_models.Membership, error)
	AddMembership(ctx context.Context, membership *db_models.Membership) error
	RemoveMembership(ctx context.Context, orgID, accountID uuid.UUID) error
	DeleteCascade(ctx context.Context, orgID uuid.UUID) error
}

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) IOrganizationRepository {
	return &organizationRepository{db: db}
}

// Create provisions the organization, its owner membership and its default
// free-tier subscription row in one transaction.
func (r *organizationRepository) Create(ctx context.Context, org *db_models.Organization, ownerMembership *db_models.Membership, freeSub *db_models.Subscription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		ownerMembership.OrganizationID = org.ID
		if err := tx.Create(ownerMembership).Error; err != nil {
			return err
		}
		freeSub.OrganizationID = org.ID
		return tx.Create(freeSub).Error
	})
}

func (r *organizationRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Organization, error) {
	var org db_models.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &org, nil
}

func (r *organizationRepository) FindByIdWithMembers(ctx context.Context, id uuid.UUID) (*db_models.Organization, error) {
	var org db_models.Organization
	err := r.db.WithContext(ctx).
		Preload("Memberships").
		Preload("Memberships.Account").
		First(&org, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &org, nil
}

func (r *organizationRepository) ListAll(ctx context.Context, page, pageSize int) ([]db_models.Organization, error) {
	var orgs []db_models.Organization
	err := r.db.WithContext(ctx).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&orgs).Error
	return orgs, err
}

func (r *organizationRepository) GetMembership(ctx context.Context, orgID, accountID uuid.UUID) (*db_models.Membership, error) {
	var membership db_models.Membership
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND account_id = ?", orgID, accountID).
		First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &membership, nil
}

func (r *organizationRepository) AddMembership(ctx context.Context, membership *db_models.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *organizationRepository) RemoveMembership(ctx context.Context, orgID, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("organization_id = ? AND account_id = ?", orgID, accountID).
		Delete(&db_models.Membership{}).Error
}

// DeleteCascade removes the organization and everything owned by it. This is
// the only path that hard-deletes subscription rows.
func (r *organizationRepository) DeleteCascade(ctx context.Context, orgID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", orgID).Delete(&db_models.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&db_models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&db_models.DocumentChunk{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&db_models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("organization_id = ?", orgID).Delete(&db_models.Subscription{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db_models.Organization{}, "id = ?", orgID).Error
	})
}
