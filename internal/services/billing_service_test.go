package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"workhub/internal/billing"
	"workhub/internal/models/db_models"
	"workhub/internal/providers"
	"workhub/pkg/utils"
)

type billingFixture struct {
	orgID    uuid.UUID
	actorID  uuid.UUID
	provider *mockProvider
	subRepo  *mockSubscriptionRepo
	svc      BillingServiceInterface
}

// newBillingFixture wires a billing service around an owner actor and the
// given subscription rows.
func newBillingFixture(t *testing.T, rows ...*db_models.Subscription) *billingFixture {
	t.Helper()

	orgID := uuid.New()
	actorID := uuid.New()
	for _, row := range rows {
		row.OrganizationID = orgID
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}

	provider := &mockProvider{}
	subRepo := &mockSubscriptionRepo{rows: rows}
	orgRepo := (&mockOrgRepo{}).withMember(orgID, actorID, db_models.OrgRoleOwner)
	accountRepo := (&mockAccountRepo{}).withAccount(&db_models.Account{
		BaseModel: db_models.BaseModel{ID: actorID},
		Name:      "Owner",
		Email:     "owner@example.com",
	})
	registry := billing.NewRegistry("")
	subscripSvc := NewSubscriptionService(subRepo, registry)

	svc := NewBillingService(provider, subscripSvc, subRepo, orgRepo, accountRepo, registry, nil, BillingConfig{
		SuccessURL:      "https://app.example.com/billing/success",
		CancelURL:       "https://app.example.com/billing/cancel",
		PortalReturnURL: "https://app.example.com/settings",
	})

	return &billingFixture{
		orgID:    orgID,
		actorID:  actorID,
		provider: provider,
		subRepo:  subRepo,
		svc:      svc,
	}
}

func activeProRow() *db_models.Subscription {
	return &db_models.Subscription{
		Tier:               billing.TierPro,
		Status:             billing.StatusActive,
		CurrentPeriodEnd:   unixPtr(time.Now().Add(20 * 24 * time.Hour)),
		Provider:           "stripe",
		ProviderCustomerID: "cus_1",
		ProviderSubID:      "sub_1",
		Version:            1,
	}
}

func TestCreateCheckout_InvalidTierNeverReachesProvider(t *testing.T) {
	f := newBillingFixture(t)

	result, err := f.svc.CreateCheckout(context.Background(), f.orgID, f.actorID, "gold")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid tier: gold", result.Message)
	assert.Empty(t, f.provider.calls)
}

func TestCreateCheckout_NonOwnerIsForbidden(t *testing.T) {
	f := newBillingFixture(t)
	stranger := uuid.New()

	_, err := f.svc.CreateCheckout(context.Background(), f.orgID, stranger, billing.TierPro)
	assert.ErrorIs(t, err, utils.ErrNotOrgMember)
}

func TestCreateCheckout_FreeTierUsesDeterministicIdempotencyKey(t *testing.T) {
	f := newBillingFixture(t)

	f.provider.createCustomerFn = func(ctx context.Context, email, name, organizationID string) (string, error) {
		assert.Equal(t, "owner@example.com", email)
		assert.Equal(t, f.orgID.String(), organizationID)
		return "cus_new", nil
	}
	f.provider.getPriceFn = func(ctx context.Context, lookupKey string) (*providers.Price, error) {
		return &providers.Price{ID: "price_free", LookupKey: lookupKey}, nil
	}

	var seenKey string
	f.provider.freeSubscriptionFn = func(ctx context.Context, customerID, priceID, idempotencyKey string) (*providers.Subscription, error) {
		seenKey = idempotencyKey
		return &providers.Subscription{
			ID:                 "sub_free",
			CustomerID:         customerID,
			Status:             billing.StatusActive,
			PriceLookupKey:     billing.TierFree,
			CurrentPeriodStart: time.Now(),
			CurrentPeriodEnd:   time.Now().Add(30 * 24 * time.Hour),
		}, nil
	}

	result, err := f.svc.CreateCheckout(context.Background(), f.orgID, f.actorID, billing.TierFree)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, fmt.Sprintf("checkout-free-%s", f.orgID), seenKey)
	assert.False(t, f.provider.called("CreateCheckoutSession"))
}

func TestCreateCheckout_PaidTierReturnsSessionURL(t *testing.T) {
	f := newBillingFixture(t)

	f.provider.createCustomerFn = func(ctx context.Context, email, name, organizationID string) (string, error) {
		return "cus_new", nil
	}
	f.provider.getPriceFn = func(ctx context.Context, lookupKey string) (*providers.Price, error) {
		return &providers.Price{ID: "price_pro", LookupKey: lookupKey, UnitAmount: 2000}, nil
	}
	f.provider.checkoutFn = func(ctx context.Context, params providers.CheckoutParams) (*providers.CheckoutSession, error) {
		assert.Equal(t, "cus_new", params.CustomerID)
		assert.Equal(t, "price_pro", params.PriceID)
		assert.Equal(t, f.orgID.String(), params.OrganizationID)
		return &providers.CheckoutSession{ID: "cs_1", URL: "https://checkout.example.com/cs_1"}, nil
	}

	result, err := f.svc.CreateCheckout(context.Background(), f.orgID, f.actorID, billing.TierPro)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "https://checkout.example.com/cs_1", result.URL)
	assert.Equal(t, "cs_1", result.SessionID)
}

func TestCreateCheckout_CheaperTierSchedulesDowngrade(t *testing.T) {
	f := newBillingFixture(t, &db_models.Subscription{
		Tier:               billing.TierBusiness,
		Status:             billing.StatusActive,
		CurrentPeriodEnd:   unixPtr(time.Now().Add(20 * 24 * time.Hour)),
		Provider:           "stripe",
		ProviderCustomerID: "cus_1",
		ProviderSubID:      "sub_1",
		Version:            1,
	})

	f.provider.getPriceFn = func(ctx context.Context, lookupKey string) (*providers.Price, error) {
		return &providers.Price{ID: "price_" + lookupKey, LookupKey: lookupKey}, nil
	}
	f.provider.downgradeScheduleFn = func(ctx context.Context, subscriptionID, currentPriceID, newPriceID string) (string, error) {
		assert.Equal(t, "sub_1", subscriptionID)
		assert.Equal(t, "price_business", currentPriceID)
		assert.Equal(t, "price_pro", newPriceID)
		return "sched_1", nil
	}

	result, err := f.svc.CreateCheckout(context.Background(), f.orgID, f.actorID, billing.TierPro)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, f.provider.called("CreateCheckoutSession"))
	assert.False(t, f.provider.called("CreateFreeSubscription"))

	patch := f.subRepo.lastPatch()
	require.NotNil(t, patch)
	assert.Equal(t, billing.TierPro, patch["scheduled_downgrade_tier"])
	assert.Equal(t, "sched_1", patch["downgrade_schedule_id"])
}

func TestCreateCheckout_BlockedDuringGracePeriod(t *testing.T) {
	row := activeProRow()
	row.CancelAtPeriodEnd = billing.CancelFlagTrue
	f := newBillingFixture(t, row)

	result, err := f.svc.CreateCheckout(context.Background(), f.orgID, f.actorID, billing.TierBusiness)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, f.provider.calls)
}

func TestCancel_IneligibleStateNeverReachesProvider(t *testing.T) {
	f := newBillingFixture(t) // free row, nothing to cancel

	result, err := f.svc.Cancel(context.Background(), f.orgID, f.actorID, "sub_1")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "The subscription cannot be canceled in its current state", result.Message)
	assert.Empty(t, f.provider.calls)
}

func TestCancel_ForeignSubscriptionIDIsRejected(t *testing.T) {
	f := newBillingFixture(t, activeProRow())

	result, err := f.svc.Cancel(context.Background(), f.orgID, f.actorID, "sub_other")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Subscription not found or does not belong to this organization", result.Message)
	assert.Empty(t, f.provider.calls)
}

func TestCancel_MarksRowAndReportsPeriodEnd(t *testing.T) {
	f := newBillingFixture(t, activeProRow())

	periodEnd := time.Now().Add(20 * 24 * time.Hour)
	f.provider.cancelFn = func(ctx context.Context, subscriptionID string) (*providers.Subscription, error) {
		return &providers.Subscription{
			ID:                subscriptionID,
			Status:            billing.StatusActive,
			CancelAtPeriodEnd: true,
			CurrentPeriodEnd:  periodEnd,
		}, nil
	}

	result, err := f.svc.Cancel(context.Background(), f.orgID, f.actorID, "sub_1")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Contains(t, result.Message, periodEnd.Format("Jan 2, 2006"))

	patch := f.subRepo.lastPatch()
	require.NotNil(t, patch)
	assert.Equal(t, billing.CancelFlagTrue, patch["cancel_at_period_end"])
	assert.NotNil(t, patch["canceled_at"])
}

func TestReactivate_RequiresGracePeriod(t *testing.T) {
	f := newBillingFixture(t, activeProRow()) // still active, nothing to reactivate

	result, err := f.svc.Reactivate(context.Background(), f.orgID, f.actorID, "sub_1")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "The subscription cannot be reactivated in its current state", result.Message)
	assert.Empty(t, f.provider.calls)
}

func TestReactivate_ClearsCancellation(t *testing.T) {
	row := activeProRow()
	row.CancelAtPeriodEnd = billing.CancelFlagTrue
	f := newBillingFixture(t, row)

	f.provider.reactivateFn = func(ctx context.Context, subscriptionID string) (*providers.Subscription, error) {
		return &providers.Subscription{ID: subscriptionID, Status: billing.StatusActive}, nil
	}

	result, err := f.svc.Reactivate(context.Background(), f.orgID, f.actorID, "sub_1")
	require.NoError(t, err)

	assert.True(t, result.Success)
	patch := f.subRepo.lastPatch()
	require.NotNil(t, patch)
	assert.Equal(t, billing.StatusActive, patch["status"])
	assert.Equal(t, billing.CancelFlagFalse, patch["cancel_at_period_end"])
	assert.Nil(t, patch["canceled_at"])
}

func TestCancelPendingDowngrade_NothingScheduled(t *testing.T) {
	f := newBillingFixture(t, activeProRow())

	result, err := f.svc.CancelPendingDowngrade(context.Background(), f.orgID, f.actorID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "No downgrade is scheduled", result.Message)
}

func TestCancelPendingDowngrade_ReleasesStoredSchedule(t *testing.T) {
	tier := billing.TierPro
	scheduleID := "sched_1"
	row := &db_models.Subscription{
		Tier:                   billing.TierBusiness,
		Status:                 billing.StatusActive,
		CurrentPeriodEnd:       unixPtr(time.Now().Add(20 * 24 * time.Hour)),
		Provider:               "stripe",
		ProviderCustomerID:     "cus_1",
		ProviderSubID:          "sub_1",
		ScheduledDowngradeTier: &tier,
		DowngradeScheduleID:    &scheduleID,
		Version:                1,
	}
	f := newBillingFixture(t, row)

	var released string
	f.provider.releaseScheduleFn = func(ctx context.Context, id string) error {
		released = id
		return nil
	}

	result, err := f.svc.CancelPendingDowngrade(context.Background(), f.orgID, f.actorID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "sched_1", released)
	assert.False(t, f.provider.called("FindScheduleForSubscription"))

	patch := f.subRepo.lastPatch()
	require.NotNil(t, patch)
	assert.Nil(t, patch["scheduled_downgrade_tier"])
	assert.Nil(t, patch["downgrade_schedule_id"])
}

func TestCreatePortalSession_RequiresBillingAccount(t *testing.T) {
	f := newBillingFixture(t) // free row without a provider customer

	result, err := f.svc.CreatePortalSession(context.Background(), f.orgID, f.actorID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "No billing account exists for this organization yet", result.Message)
	assert.Empty(t, f.provider.calls)
}

func TestProviderFailureMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     *providers.Error
		message string
	}{
		{"not found", &providers.Error{StatusCode: 404, Message: "no such subscription"}, "Subscription not found or already canceled"},
		{"forbidden", &providers.Error{StatusCode: 403, Message: "nope"}, "Access denied by the payment provider"},
		{"server error", &providers.Error{StatusCode: 503, Message: "boom"}, "The payment service is temporarily unavailable, please try again later"},
		{"other", &providers.Error{StatusCode: 402, Message: "Your card was declined."}, "Your card was declined."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture(t, activeProRow())
			f.provider.cancelFn = func(ctx context.Context, subscriptionID string) (*providers.Subscription, error) {
				return nil, tt.err
			}

			result, err := f.svc.Cancel(context.Background(), f.orgID, f.actorID, "sub_1")
			require.NoError(t, err)

			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}

func TestSync_AppliesProviderView(t *testing.T) {
	f := newBillingFixture(t, activeProRow())

	f.provider.getSubscriptionFn = func(ctx context.Context, subscriptionID string) (*providers.Subscription, error) {
		return &providers.Subscription{
			ID:                 subscriptionID,
			CustomerID:         "cus_1",
			Status:             billing.StatusPastDue,
			PriceLookupKey:     billing.TierPro,
			CurrentPeriodStart: time.Now().Add(-10 * 24 * time.Hour),
			CurrentPeriodEnd:   time.Now().Add(20 * 24 * time.Hour),
		}, nil
	}

	result, err := f.svc.Sync(context.Background(), f.orgID, f.actorID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	patch := f.subRepo.lastPatch()
	require.NotNil(t, patch)
	assert.Equal(t, billing.StatusPastDue, patch["status"])
}

func TestGetStatus_ReflectsScheduledDowngrade(t *testing.T) {
	tier := billing.TierPro
	row := activeProRow()
	row.Tier = billing.TierBusiness
	row.ScheduledDowngradeTier = &tier
	f := newBillingFixture(t, row)

	status, err := f.svc.GetStatus(context.Background(), f.orgID, f.actorID)
	require.NoError(t, err)

	assert.Equal(t, billing.TierBusiness, status.Tier)
	assert.Equal(t, billing.StateActive, status.State)
	require.NotNil(t, status.ScheduledDowngradeTier)
	assert.Equal(t, billing.TierPro, *status.ScheduledDowngradeTier)
	assert.False(t, status.CancelAtPeriodEnd)
}
