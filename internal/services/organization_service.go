package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"workhub/internal/models/db_models"
	"workhub/internal/models/response_models"
	"workhub/internal/repositories"
	"workhub/pkg/utils"
)

type OrganizationServiceInterface interface {
	CreateOrganization(ctx context.Context, name string, ownerID uuid.UUID) (*response_models.OrganizationResponse, error)
	GetOrganization(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.OrganizationResponse, error)
	AddMember(ctx context.Context, orgID, actorID uuid.UUID, email string) error
	RemoveMember(ctx context.Context, orgID, actorID, memberID uuid.UUID) error
	DeleteOrganization(ctx context.Context, orgID, actorID uuid.UUID) error
}

type OrganizationService struct {
	orgRepo     repositories.IOrganizationRepository
	accountRepo repositories.AccountRepository
}

func NewOrganizationService(orgRepo repositories.IOrganizationRepository, accountRepo repositories.AccountRepository) OrganizationServiceInterface {
	return &OrganizationService{
		orgRepo:     orgRepo,
		accountRepo: accountRepo,
	}
}

// CreateOrganization provisions the organization together with its owner
// membership and default free-tier subscription row.
func (o *OrganizationService) CreateOrganization(ctx context.Context, name string, ownerID uuid.UUID) (*response_models.OrganizationResponse, error) {
	org := &db_models.Organization{
		Name:    name,
		Slug:    slugify(name),
		OwnerID: ownerID,
	}
	ownerMembership := &db_models.Membership{
		AccountID: ownerID,
		Role:      db_models.OrgRoleOwner,
	}
	freeSub := NewFreeSubscriptionRow(uuid.Nil) // OrganizationID set in the transaction

	if err := o.orgRepo.Create(ctx, org, ownerMembership, freeSub); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return toOrganizationResponse(org, nil), nil
}

func (o *OrganizationService) GetOrganization(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.OrganizationResponse, error) {
	membership, err := o.orgRepo.GetMembership(ctx, orgID, actorID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if membership == nil {
		return nil, utils.ErrNotOrgMember
	}

	org, err := o.orgRepo.FindByIdWithMembers(ctx, orgID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if org == nil {
		return nil, utils.ErrOrganizationNotFound
	}

	return toOrganizationResponse(org, org.Memberships), nil
}

func (o *OrganizationService) AddMember(ctx context.Context, orgID, actorID uuid.UUID, email string) error {
	if err := o.requireOwner(ctx, orgID, actorID); err != nil {
		return err
	}

	account, err := o.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	existing, err := o.orgRepo.GetMembership(ctx, orgID, account.ID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existing != nil {
		return nil // already a member, nothing to do
	}

	membership := &db_models.Membership{
		OrganizationID: orgID,
		AccountID:      account.ID,
		Role:           db_models.OrgRoleMember,
	}
	if err := o.orgRepo.AddMembership(ctx, membership); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (o *OrganizationService) RemoveMember(ctx context.Context, orgID, actorID, memberID uuid.UUID) error {
	if err := o.requireOwner(ctx, orgID, actorID); err != nil {
		return err
	}

	target, err := o.orgRepo.GetMembership(ctx, orgID, memberID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if target == nil {
		return utils.ErrNotOrgMember
	}
	if target.Role == db_models.OrgRoleOwner {
		return utils.ErrForbidden
	}

	if err := o.orgRepo.RemoveMembership(ctx, orgID, memberID); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (o *OrganizationService) DeleteOrganization(ctx context.Context, orgID, actorID uuid.UUID) error {
	if err := o.requireOwner(ctx, orgID, actorID); err != nil {
		return err
	}

	org, err := o.orgRepo.FindById(ctx, orgID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if org == nil {
		return utils.ErrOrganizationNotFound
	}

	if err := o.orgRepo.DeleteCascade(ctx, orgID); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (o *OrganizationService) requireOwner(ctx context.Context, orgID, actorID uuid.UUID) error {
	membership, err := o.orgRepo.GetMembership(ctx, orgID, actorID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if membership == nil {
		return utils.ErrNotOrgMember
	}
	if membership.Role != db_models.OrgRoleOwner {
		return utils.ErrForbidden
	}
	return nil
}

func toOrganizationResponse(org *db_models.Organization, memberships []db_models.Membership) *response_models.OrganizationResponse {
	resp := &response_models.OrganizationResponse{
		ID:      org.ID.String(),
		Name:    org.Name,
		Slug:    org.Slug,
		OwnerID: org.OwnerID.String(),
	}
	for _, m := range memberships {
		resp.Members = append(resp.Members, response_models.OrganizationMember{
			AccountID: m.AccountID.String(),
			Name:      m.Account.Name,
			Email:     m.Account.Email,
			Role:      m.Role,
		})
	}
	return resp
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	// Random suffix keeps slugs unique without a lookup.
	suffix, err := utils.GenerateSecureToken(3)
	if err != nil {
		return b.String()
	}
	return b.String() + "-" + suffix
}
