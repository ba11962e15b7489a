package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"workhub/internal/billing"
	"workhub/internal/models/db_models"
	"workhub/internal/models/response_models"
	"workhub/internal/providers"
	"workhub/internal/repositories"
	"workhub/pkg/utils"
)

type BillingConfig struct {
	SuccessURL      string // checkout redirect on success
	CancelURL       string // checkout redirect on abort
	PortalReturnURL string
}

type BillingServiceInterface interface {
	IsConfigured() bool
	GetPricing(ctx context.Context) ([]response_models.PricingTier, error)
	GetStatus(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.BillingStatus, error)
	CanSubscribe(ctx context.Context, orgID, actorID uuid.UUID) (*billing.Eligibility, error)

	CreateCheckout(ctx context.Context, orgID, actorID uuid.UUID, tier string) (*response_models.OperationResult, error)
	Cancel(ctx context.Context, orgID, actorID uuid.UUID, providerSubID string) (*response_models.OperationResult, error)
	Reactivate(ctx context.Context, orgID, actorID uuid.UUID, providerSubID string) (*response_models.OperationResult, error)
	CancelPendingDowngrade(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.OperationResult, error)
	CreatePortalSession(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.OperationResult, error)
	Sync(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.OperationResult, error)
}

type BillingService struct {
	provider    providers.PaymentProvider // nil when billing is not configured
	subscripSvc SubscriptionServiceInterface
	subRepo     repositories.ISubscriptionRepository
	orgRepo     repositories.IOrganizationRepository
	accountRepo repositories.AccountRepository
	registry    *billing.Registry
	mail        IMailService // optional, best effort
	cfg         BillingConfig
}

func NewBillingService(
	provider providers.PaymentProvider,
	subscripSvc SubscriptionServiceInterface,
	subRepo repositories.ISubscriptionRepository,
	orgRepo repositories.IOrganizationRepository,
	accountRepo repositories.AccountRepository,
	registry *billing.Registry,
	mail IMailService,
	cfg BillingConfig,
) BillingServiceInterface {
	return &BillingService{
		provider:    provider,
		subscripSvc: subscripSvc,
		subRepo:     subRepo,
		orgRepo:     orgRepo,
		accountRepo: accountRepo,
		registry:    registry,
		mail:        mail,
		cfg:         cfg,
	}
}

func (b *BillingService) IsConfigured() bool {
	return b.provider != nil
}

func (b *BillingService) GetPricing(ctx context.Context) ([]response_models.PricingTier, error) {
	out := make([]response_models.PricingTier, 0, len(b.registry.Tiers()))
	for _, t := range b.registry.Tiers() {
		tier := response_models.PricingTier{
			LookupKey:  t.LookupKey,
			Name:       t.Name,
			TierLevel:  t.TierLevel,
			PriceMinor: t.PriceMinor,
			Currency:   t.Currency,
		}
		// Surface the provider's live price when billing is configured.
		if b.provider != nil && t.PriceMinor > 0 {
			price, err := b.provider.GetPriceByLookupKey(ctx, b.registry.ProviderLookupKey(t.LookupKey))
			if err == nil {
				tier.PriceMinor = price.UnitAmount
				tier.Currency = price.Currency
				tier.Interval = price.Interval
			} else {
				log.Printf("pricing lookup for %s failed, using registry price: %v", t.LookupKey, err)
			}
		}
		out = append(out, tier)
	}
	return out, nil
}

func (b *BillingService) GetStatus(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.BillingStatus, error) {
	if err := b.requireMember(ctx, orgID, actorID); err != nil {
		return nil, err
	}

	info, err := b.subscripSvc.GetSubscription(ctx, orgID)
	if err != nil {
		return nil, err
	}

	sub := info.ActiveSubscription
	return &response_models.BillingStatus{
		Tier:                   info.EffectiveTier,
		State:                  info.State,
		Status:                 info.Status,
		CurrentPeriodEnd:       info.CurrentPeriodEnd,
		CancelAtPeriodEnd:      sub.CancelAtPeriodEnd == billing.CancelFlagTrue,
		ScheduledDowngradeTier: sub.ScheduledDowngradeTier,
		Eligibility:            info.Eligibility,
	}, nil
}

func (b *BillingService) CanSubscribe(ctx context.Context, orgID, actorID uuid.UUID) (*billing.Eligibility, error) {
	if err := b.requireMember(ctx, orgID, actorID); err != nil {
		return nil, err
	}

	info, err := b.subscripSvc.GetSubscription(ctx, orgID)
	if err != nil {
		return nil, err
	}
	eligibility := info.Eligibility
	return &eligibility, nil
}

func (b *BillingService) CreateCheckout(ctx context.Context, orgID, actorID uuid.UUID, tier string) (*response_models.OperationResult, error) {
	if err := b.requireOwner(ctx, orgID, actorID); err != nil {
		return nil, err
	}

	// Reject unknown tiers before touching the provider.
	if !b.registry.IsValidTier(tier) {
		return failResult(fmt.Sprintf("Invalid tier: %s", tier)), nil
	}
	if b.provider == nil {
		return failResult("Billing is not configured"), nil
	}

	info, err := b.subscripSvc.GetSubscription(ctx, orgID)
	if err != nil {
		return nil, err
	}
	sub := info.ActiveSubscription

	// A cheaper tier while paid and active is a deferred downgrade, not a
	// new checkout.
	if info.State == billing.StateActive && sub.Tier != billing.TierFree && b.registry.IsDowngrade(sub.Tier, tier) {
		return b.scheduleDowngrade(ctx, sub, tier)
	}

	if !info.Eligibility.CanCreateNew && !info.Eligibility.CanUpgrade {
		return failResult("A new subscription cannot be started in the current state, reactivate the existing one instead"), nil
	}

	customerID, res, err := b.ensureCustomer(ctx, orgID, actorID, sub)
	if res != nil || err != nil {
		return res, err
	}

	price, perr := b.provider.GetPriceByLookupKey(ctx, b.registry.ProviderLookupKey(tier))
	if perr != nil {
		return b.providerFailure("price lookup", perr), nil
	}

	if tier == billing.TierFree {
		// Deterministic idempotency key: a retried request lands on the
		// same provider subscription instead of creating a second one.
		key := fmt.Sprintf("checkout-free-%s", orgID)
		remote, perr := b.provider.CreateFreeSubscription(ctx, customerID, price.ID, key)
		if perr != nil {
			return b.providerFailure("free subscription", perr), nil
		}
		if err := b.subscripSvc.CreateFromProvider(ctx, orgID, remote); err != nil {
			return nil, err
		}
		return &response_models.OperationResult{Success: true, Message: "Free plan activated"}, nil
	}

	session, perr := b.provider.CreateCheckoutSession(ctx, providers.CheckoutParams{
		CustomerID:     customerID,
		PriceID:        price.ID,
		SuccessURL:     b.cfg.SuccessURL,
		CancelURL:      b.cfg.CancelURL,
		OrganizationID: orgID.String(),
	})
	if perr != nil {
		return b.providerFailure("checkout", perr), nil
	}

	return &response_models.OperationResult{
		Success:   true,
		URL:       session.URL,
		SessionID: session.ID,
	}, nil
}

func (b *BillingService) Cancel(ctx context.Context, orgID, actorID uuid.UUID, providerSubID string) (*response_models.OperationResult, error) {
	if err := b.requireOwner(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	if b.provider == nil {
		return failResult("Billing is not configured"), nil
	}

	info, err := b.subscripSvc.GetSubscription(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !info.Eligibility.CanCancel {
		return failResult("The subscription cannot be canceled in its current state"), nil
	}
	sub := info.ActiveSubscription
	if sub.ProviderSubID == "" || sub.ProviderSubID != providerSubID {
		return failResult("Subscription not found or does not belong to this organization"), nil
	}

	remote, perr := b.provider.CancelAtPeriodEnd(ctx, providerSubID)
	if perr != nil {
		return b.providerFailure("cancel", perr), nil
	}

	now := time.Now().Unix()
	patch := map[string]interface{}{
		"cancel_at_period_end": billing.CancelFlagTrue,
		"canceled_at":          now,
	}
	if err := b.subRepo.UpdateVersioned(ctx, orgID, providerSubID, sub.Version, patch); err != nil {
		if err == utils.ErrVersionConflict {
			return nil, err
		}
		return nil, utils.ErrDatabaseError
	}

	b.notifyOwner(ctx, actorID, "Subscription canceled",
		fmt.Sprintf("Your %s plan stays active until %s.", sub.Tier, remote.CurrentPeriodEnd.Format("Jan 2, 2006")))

	return &response_models.OperationResult{
		Success: true,
		Message: fmt.Sprintf("Subscription will end on %s", remote.CurrentPeriodEnd.Format("Jan 2, 2006")),
	}, nil
}

func (b *BillingService) Reactivate(ctx context.Context, orgID, actorID uuid.UUID, providerSubID string) (*response_models.OperationResult, error) {
	if err := b.requireOwner(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	if b.provider == nil {
		return failResult("Billing is not configured"), nil
	}

	info, err := b.subscripSvc.GetSubscription(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !info.Eligibility.CanReactivate {
		return failResult("The subscription cannot be reactivated in its current state"), nil
	}
	sub := info.ActiveSubscription
	if sub.ProviderSubID == "" || sub.ProviderSubID != providerSubID {
		return failResult("Subscription not found or does not belong to this organization"), nil
	}

	if _, perr := b.provider.Reactivate(ctx, providerSubID); perr != nil {
		return b.providerFailure("reactivate", perr), nil
	}

	patch := map[string]interface{}{
		"status":               billing.StatusActive,
		"cancel_at_period_end": billing.CancelFlagFalse,
		"canceled_at":          nil,
	}
	if err := b.subRepo.UpdateVersioned(ctx, orgID, providerSubID, sub.Version, patch); err != nil {
		if err == utils.ErrVersionConflict {
			return nil, err
		}
		return nil, utils.ErrDatabaseError
	}

	return &response_models.OperationResult{Success: true, Message: "Subscription reactivated"}, nil
}

func (b *BillingService) CancelPendingDowngrade(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.OperationResult, error) {
	if err := b.requireOwner(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	if b.provider == nil {
		return failResult("Billing is not configured"), nil
	}

	info, err := b.subscripSvc.GetSubscription(ctx, orgID)
	if err != nil {
		return nil, err
	}
	sub := info.ActiveSubscription
	if sub.ScheduledDowngradeTier == nil {
		return failResult("No downgrade is scheduled"), nil
	}

	scheduleID := ""
	if sub.DowngradeScheduleID != nil {
		scheduleID = *sub.DowngradeScheduleID
	}
	if scheduleID == "" {
		found, perr := b.provider.FindScheduleForSubscription(ctx, sub.ProviderSubID)
		if perr != nil {
			return b.providerFailure("schedule lookup", perr), nil
		}
		scheduleID = found
	}
	if scheduleID != "" {
		if perr := b.provider.ReleaseSchedule(ctx, scheduleID); perr != nil {
			return b.providerFailure("schedule release", perr), nil
		}
	}

	patch := map[string]interface{}{
		"scheduled_downgrade_tier": nil,
		"downgrade_schedule_id":    nil,
	}
	if err := b.subRepo.UpdateVersioned(ctx, orgID, sub.ProviderSubID, sub.Version, patch); err != nil {
		if err == utils.ErrVersionConflict {
			return nil, err
		}
		return nil, utils.ErrDatabaseError
	}

	return &response_models.OperationResult{Success: true, Message: "Scheduled downgrade canceled"}, nil
}

func (b *BillingService) CreatePortalSession(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.OperationResult, error) {
	if err := b.requireOwner(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	if b.provider == nil {
		return failResult("Billing is not configured"), nil
	}

	info, err := b.subscripSvc.GetSubscription(ctx, orgID)
	if err != nil {
		return nil, err
	}
	customerID := info.ActiveSubscription.ProviderCustomerID
	if customerID == "" {
		return failResult("No billing account exists for this organization yet"), nil
	}

	url, perr := b.provider.CreatePortalSession(ctx, customerID, b.cfg.PortalReturnURL)
	if perr != nil {
		return b.providerFailure("portal session", perr), nil
	}

	return &response_models.OperationResult{Success: true, URL: url}, nil
}

func (b *BillingService) Sync(ctx context.Context, orgID, actorID uuid.UUID) (*response_models.OperationResult, error) {
	if err := b.requireOwner(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	if b.provider == nil {
		return failResult("Billing is not configured"), nil
	}

	info, err := b.subscripSvc.GetSubscription(ctx, orgID)
	if err != nil {
		return nil, err
	}
	sub := info.ActiveSubscription
	if sub.ProviderSubID == "" {
		return failResult("Nothing to sync, the organization has no provider subscription"), nil
	}

	remote, perr := b.provider.GetSubscription(ctx, sub.ProviderSubID)
	if perr != nil {
		return b.providerFailure("sync", perr), nil
	}
	if err := b.subscripSvc.ApplyProviderState(ctx, sub, remote); err != nil {
		return nil, err
	}

	return &response_models.OperationResult{Success: true, Message: "Subscription synced with the payment provider"}, nil
}

func (b *BillingService) scheduleDowngrade(ctx context.Context, sub *db_models.Subscription, tier string) (*response_models.OperationResult, error) {
	if sub.ProviderSubID == "" {
		return failResult("The current subscription is not managed by the payment provider"), nil
	}
	if sub.ScheduledDowngradeTier != nil {
		return failResult("A downgrade is already scheduled, cancel it first"), nil
	}

	currentPrice, perr := b.provider.GetPriceByLookupKey(ctx, b.registry.ProviderLookupKey(sub.Tier))
	if perr != nil {
		return b.providerFailure("price lookup", perr), nil
	}
	newPrice, perr := b.provider.GetPriceByLookupKey(ctx, b.registry.ProviderLookupKey(tier))
	if perr != nil {
		return b.providerFailure("price lookup", perr), nil
	}

	scheduleID, perr := b.provider.CreateDowngradeSchedule(ctx, sub.ProviderSubID, currentPrice.ID, newPrice.ID)
	if perr != nil {
		return b.providerFailure("downgrade schedule", perr), nil
	}

	patch := map[string]interface{}{
		"scheduled_downgrade_tier": tier,
		"downgrade_schedule_id":    scheduleID,
	}
	if err := b.subRepo.UpdateVersioned(ctx, sub.OrganizationID, sub.ProviderSubID, sub.Version, patch); err != nil {
		if err == utils.ErrVersionConflict {
			return nil, err
		}
		return nil, utils.ErrDatabaseError
	}

	return &response_models.OperationResult{
		Success: true,
		Message: fmt.Sprintf("Downgrade to %s scheduled for the end of the current period", tier),
	}, nil
}

// ensureCustomer returns the provider customer id for the organization,
// creating one on first use. A non-nil result short-circuits the caller.
func (b *BillingService) ensureCustomer(ctx context.Context, orgID, actorID uuid.UUID, sub *db_models.Subscription) (string, *response_models.OperationResult, error) {
	if sub.ProviderCustomerID != "" {
		return sub.ProviderCustomerID, nil, nil
	}

	actor, err := b.accountRepo.FindById(ctx, actorID.String())
	if err != nil {
		return "", nil, utils.ErrDatabaseError
	}
	if actor == nil {
		return "", nil, utils.ErrAccountNotFound
	}

	customerID, perr := b.provider.CreateCustomer(ctx, actor.Email, actor.Name, orgID.String())
	if perr != nil {
		return "", b.providerFailure("customer creation", perr), nil
	}

	patch := map[string]interface{}{"provider_customer_id": customerID}
	if err := b.subRepo.UpdateVersioned(ctx, orgID, sub.ProviderSubID, sub.Version, patch); err != nil {
		if err == utils.ErrVersionConflict {
			return "", nil, err
		}
		return "", nil, utils.ErrDatabaseError
	}
	return customerID, nil, nil
}

func (b *BillingService) requireMember(ctx context.Context, orgID, actorID uuid.UUID) error {
	membership, err := b.orgRepo.GetMembership(ctx, orgID, actorID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if membership == nil {
		return utils.ErrNotOrgMember
	}
	return nil
}

func (b *BillingService) requireOwner(ctx context.Context, orgID, actorID uuid.UUID) error {
	membership, err := b.orgRepo.GetMembership(ctx, orgID, actorID)
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

// providerFailure maps a provider error onto the user-facing message table.
func (b *BillingService) providerFailure(action string, err error) *response_models.OperationResult {
	var pErr *providers.Error
	if errors.As(err, &pErr) {
		log.Printf("provider %s failed (status %d): %v", action, pErr.StatusCode, pErr)
		switch {
		case pErr.StatusCode == 404:
			return failResult("Subscription not found or already canceled")
		case pErr.StatusCode == 403:
			return failResult("Access denied by the payment provider")
		case pErr.StatusCode >= 500:
			return failResult("The payment service is temporarily unavailable, please try again later")
		default:
			return failResult(pErr.Message)
		}
	}
	log.Printf("provider %s failed: %v", action, err)
	return failResult("The payment service could not be reached, please try again later")
}

func (b *BillingService) notifyOwner(ctx context.Context, actorID uuid.UUID, subject, body string) {
	if b.mail == nil {
		return
	}
	actor, err := b.accountRepo.FindById(ctx, actorID.String())
	if err != nil || actor == nil {
		return
	}
	if err := b.mail.SendMailToNotifyUser(actor.Email, subject, body, "", ""); err != nil {
		log.Printf("billing notification mail failed: %v", err)
	}
}

func failResult(message string) *response_models.OperationResult {
	return &response_models.OperationResult{Success: false, Message: message}
}
