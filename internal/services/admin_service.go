package services

import (
	"context"

	"workhub/internal/models/response_models"
	"workhub/internal/repositories"
	"workhub/pkg/utils"
)

type AdminServiceInterface interface {
	ListOrganizations(ctx context.Context, page, pageSize int) ([]response_models.AdminOrganization, error)
	TriggerReconcile(ctx context.Context) (*response_models.SyncReport, error)
}

type AdminService struct {
	orgRepo      repositories.IOrganizationRepository
	subscripSvc  SubscriptionServiceInterface
	reconcileSvc ReconcileServiceInterface
}

func NewAdminService(orgRepo repositories.IOrganizationRepository, subscripSvc SubscriptionServiceInterface, reconcileSvc ReconcileServiceInterface) AdminServiceInterface {
	return &AdminService{
		orgRepo:      orgRepo,
		subscripSvc:  subscripSvc,
		reconcileSvc: reconcileSvc,
	}
}

func (a *AdminService) ListOrganizations(ctx context.Context, page, pageSize int) ([]response_models.AdminOrganization, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}

	orgs, err := a.orgRepo.ListAll(ctx, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.AdminOrganization, 0, len(orgs))
	for i := range orgs {
		org := &orgs[i]
		entry := response_models.AdminOrganization{
			ID:   org.ID.String(),
			Name: org.Name,
			Slug: org.Slug,
		}

		info, err := a.subscripSvc.GetSubscription(ctx, org.ID)
		if err == nil {
			entry.Tier = info.EffectiveTier
			entry.State = string(info.State)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (a *AdminService) TriggerReconcile(ctx context.Context) (*response_models.SyncReport, error) {
	report, err := a.reconcileSvc.Run(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return report, nil
}
