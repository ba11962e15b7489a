package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"workhub/internal/billing"
	"workhub/internal/models/db_models"
	"workhub/internal/providers"
	"workhub/internal/repositories"
	"workhub/pkg/utils"
)

// SubscriptionInfo is the read-side view of an organization's subscription:
// the stored row plus everything derived from it on this read.
type SubscriptionInfo struct {
	// EffectiveTier is the tier whose features the organization currently
	// gets. It stays on the paid tier through the cancellation grace period
	// and falls back to free everywhere else.
	EffectiveTier      string
	Status             string
	CurrentPeriodEnd   *time.Time
	State              billing.State
	Eligibility        billing.Eligibility
	ActiveSubscription *db_models.Subscription
}

type SubscriptionServiceInterface interface {
	// GetSubscription returns the newest subscription row for the
	// organization, creating the default free-tier row when none exists.
	GetSubscription(ctx context.Context, orgID uuid.UUID) (*SubscriptionInfo, error)

	// ApplyProviderState overwrites the local row from the provider's
	// current view. Retries once when the row moved under the caller.
	ApplyProviderState(ctx context.Context, local *db_models.Subscription, remote *providers.Subscription) error

	// CreateFromProvider inserts a new local row mirroring a provider
	// subscription, e.g. after a checkout webhook.
	CreateFromProvider(ctx context.Context, orgID uuid.UUID, remote *providers.Subscription) error
}

type SubscriptionService struct {
	subRepo  repositories.ISubscriptionRepository
	registry *billing.Registry
}

func NewSubscriptionService(subRepo repositories.ISubscriptionRepository, registry *billing.Registry) SubscriptionServiceInterface {
	return &SubscriptionService{
		subRepo:  subRepo,
		registry: registry,
	}
}

// NewFreeSubscriptionRow is the default row an organization starts on.
func NewFreeSubscriptionRow(orgID uuid.UUID) *db_models.Subscription {
	return &db_models.Subscription{
		OrganizationID: orgID,
		Tier:           billing.TierFree,
		Status:         billing.StatusActive,
		Provider:       "local",
		Version:        1,
	}
}

func (s *SubscriptionService) GetSubscription(ctx context.Context, orgID uuid.UUID) (*SubscriptionInfo, error) {
	sub, err := s.subRepo.GetLatestByOrganization(ctx, orgID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	if sub == nil {
		sub = NewFreeSubscriptionRow(orgID)
		if err := s.subRepo.Create(ctx, sub); err != nil {
			return nil, utils.ErrDatabaseError
		}
	}

	var periodEnd *time.Time
	if sub.CurrentPeriodEnd != nil {
		t := time.Unix(*sub.CurrentPeriodEnd, 0)
		periodEnd = &t
	}

	state := billing.CalculateState(sub.Status, sub.Tier, periodEnd, sub.CancelAtPeriodEnd)
	eligibility := billing.StateEligibility(state)
	if state == billing.StateCanceledGracePeriod {
		eligibility.GracePeriodEnds = periodEnd
	}

	effectiveTier := billing.TierFree
	if state == billing.StateActive || state == billing.StateCanceledGracePeriod {
		effectiveTier = sub.Tier
	}

	return &SubscriptionInfo{
		EffectiveTier:      effectiveTier,
		Status:             sub.Status,
		CurrentPeriodEnd:   periodEnd,
		State:              state,
		Eligibility:        eligibility,
		ActiveSubscription: sub,
	}, nil
}

func (s *SubscriptionService) ApplyProviderState(ctx context.Context, local *db_models.Subscription, remote *providers.Subscription) error {
	patch := s.providerPatch(remote)

	err := s.subRepo.UpdateVersioned(ctx, local.OrganizationID, local.ProviderSubID, local.Version, patch)
	if err == nil {
		return nil
	}
	if err != utils.ErrVersionConflict {
		return utils.ErrDatabaseError
	}

	// The row moved under us (webhook vs. user action). Re-read and apply
	// the provider's view on top of the fresh version.
	log.Printf("subscription %s moved concurrently, retrying provider sync", local.ProviderSubID)
	fresh, rerr := s.subRepo.GetByProviderSubID(ctx, local.ProviderSubID)
	if rerr != nil {
		return utils.ErrDatabaseError
	}
	if fresh == nil {
		return utils.ErrVersionConflict
	}

	if err := s.subRepo.UpdateVersioned(ctx, fresh.OrganizationID, fresh.ProviderSubID, fresh.Version, patch); err != nil {
		if err == utils.ErrVersionConflict {
			return err
		}
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *SubscriptionService) CreateFromProvider(ctx context.Context, orgID uuid.UUID, remote *providers.Subscription) error {
	start := remote.CurrentPeriodStart.Unix()
	end := remote.CurrentPeriodEnd.Unix()

	sub := &db_models.Subscription{
		OrganizationID:     orgID,
		Tier:               s.registry.StripPrefix(remote.PriceLookupKey),
		Status:             remote.Status,
		CurrentPeriodStart: &start,
		CurrentPeriodEnd:   &end,
		CancelAtPeriodEnd:  cancelFlag(remote.CancelAtPeriodEnd),
		Provider:           "stripe",
		ProviderCustomerID: remote.CustomerID,
		ProviderSubID:      remote.ID,
		Version:            1,
	}
	if remote.CanceledAt != nil {
		t := remote.CanceledAt.Unix()
		sub.CanceledAt = &t
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *SubscriptionService) providerPatch(remote *providers.Subscription) map[string]interface{} {
	patch := map[string]interface{}{
		"tier":                 s.registry.StripPrefix(remote.PriceLookupKey),
		"status":               remote.Status,
		"current_period_start": remote.CurrentPeriodStart.Unix(),
		"current_period_end":   remote.CurrentPeriodEnd.Unix(),
		"cancel_at_period_end": cancelFlag(remote.CancelAtPeriodEnd),
	}
	if remote.CustomerID != "" {
		patch["provider_customer_id"] = remote.CustomerID
	}
	if remote.CanceledAt != nil {
		patch["canceled_at"] = remote.CanceledAt.Unix()
	} else {
		patch["canceled_at"] = nil
	}
	return patch
}

func cancelFlag(cancelAtPeriodEnd bool) string {
	if cancelAtPeriodEnd {
		return billing.CancelFlagTrue
	}
	return billing.CancelFlagFalse
}
